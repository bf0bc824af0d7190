package httpparser

import "errors"

var (
	ErrInvalidMethod        = errors.New("method is not allowed")
	ErrInvalidPath          = errors.New("path is empty or contains disallowed characters")
	ErrProtocolNotSupported = errors.New("protocol is not supported")
	ErrInvalidHeader        = errors.New("invalid header line")
	ErrRequestSyntaxError   = errors.New("request syntax error")
	ErrTooManyHeaders       = errors.New("too many headers")
	ErrBufferOverflow       = errors.New("buffer's size is exceeded")

	ErrInvalidContentLength = errors.New("invalid value for content-length header")
	ErrBodyTooBig           = errors.New("body is too big")
	ErrInvalidChunkSize     = errors.New("chunk size is invalid hexadecimal value")
	ErrTooBigChunkSize      = errors.New("chunk size is too big")
	ErrInvalidChunkSplitter = errors.New("invalid chunk splitter")

	ErrIncompleteMessage = errors.New("connection closed in the middle of the request")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrParserIsDead      = errors.New("once error occurred, parser cannot be used anymore")
)
