package httpparser

/*
	Handler receives the pieces of every request on the connection. Byte slices are owned
	by the parser and valid only during the call, so copy them if you need them later.
	Any returned error kills the parser
*/
type Handler interface {
	OnMessageBegin() error
	OnMethod(method []byte) error
	OnPath(path []byte) error
	OnProtocol(proto []byte) error
	OnHeadersBegin() error
	OnHeader(key, value []byte) error
	OnHeadersComplete() error
	OnBody(chunk []byte) error
	OnMessageComplete() error
}
