package httpparser

import "bytes"

var supportedProtocols = [][]byte{
	[]byte("HTTP/1.1"),
	[]byte("HTTP/1.0"),
}

// IsMethodValid reports whether the method is one of rfc7231 and rfc5789 ones
func IsMethodValid(method []byte) bool {
	switch string(method) {
	case "GET", "HEAD", "POST", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH":
		return true
	default:
		return false
	}
}

// IsProtocolSupported compares the protocol case-insensitively, as some clients send Http/1.1
func IsProtocolSupported(proto []byte) bool {
	for _, supported := range supportedProtocols {
		if bytes.EqualFold(proto, supported) {
			return true
		}
	}

	return false
}
