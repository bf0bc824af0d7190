package httpparser

type parsingState uint8

const (
	method parsingState = iota + 1
	path
	protocol
	protocolCR
	headerLineBegin
	headerKey
	headerColon
	headerValue
	headerValueCR
	headersEndCR
	bodyIdentity
	bodyChunked
	bodyConnectionClose

	dead
)

type chunkedState uint8

const (
	chunkLength chunkedState = iota + 1
	chunkExtension
	chunkLengthCR
	chunkBody
	chunkBodyEnd
	chunkBodyCR
	trailerLineBegin
	trailerLine
	trailerCR
	transferCompleted
)
