package httpparser

import (
	"bytes"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
)

var (
	contentLength    = []byte("content-length")
	transferEncoding = []byte("transfer-encoding")
	connection       = []byte("connection")
	chunked          = []byte("chunked")
	closeConnection  = []byte("close")
)

/*
	HTTPRequestParser is an incremental HTTP/1.x request parser. It is fed with whatever
	the connection gives, and calls the handler as soon as every piece of the request is
	known. Pipelined requests are parsed one after another
*/
type HTTPRequestParser struct {
	handler  Handler
	settings Settings
	log      *zap.SugaredLogger

	state            parsingState
	startLineBuff    []byte
	startLineOffset  int
	headersBuffer    []byte
	headerValueBegin int
	headersCount     int

	bodyBytesLeft    int
	hasContentLength bool
	closeConnection  bool
	isChunked        bool
	chunksParser     *chunkedBodyParser
}

/*
	Returns new initialized instance of parser. OnMessageBegin of the first request is
	called right here
*/
func NewHTTPRequestParser(handler Handler, settings Settings) (*HTTPRequestParser, error) {
	if err := handler.OnMessageBegin(); err != nil {
		return nil, err
	}

	settings = PrepareSettings(settings)

	return &HTTPRequestParser{
		handler:       handler,
		settings:      settings,
		log:           settings.Logger,
		state:         method,
		startLineBuff: make([]byte, 0, settings.InitialStartLineBufferLength),
		headersBuffer: make([]byte, 0, settings.InitialHeaderBufferLength),
		chunksParser: NewChunkedBodyParser(
			handler.OnBody, settings.MaxChunkLength, settings.MaxBodyLength,
		),
	}, nil
}

// Clear prepares the parser for the next request on the same connection
func (p *HTTPRequestParser) Clear() {
	p.state = method
	p.startLineBuff = p.startLineBuff[:0]
	p.startLineOffset = 0
	p.headersBuffer = p.headersBuffer[:0]
	p.headerValueBegin = 0
	p.headersCount = 0
	p.bodyBytesLeft = 0
	p.hasContentLength = false
	p.closeConnection = false
	p.isChunked = false
	p.chunksParser.Clear()
}

/*
	Feed parses the next piece of the stream. Empty data means the peer closed the
	connection: a body delimited by the connection close is completed then, and
	ErrConnectionClosed is returned to let the caller know nothing more is expected
*/
func (p *HTTPRequestParser) Feed(data []byte) error {
	if p.state == dead {
		return ErrParserIsDead
	}

	var err error

	if len(data) == 0 {
		err = p.connectionClosed()
	} else {
		err = p.feed(data)
	}

	if err != nil {
		p.die(err)
	}

	return err
}

func (p *HTTPRequestParser) connectionClosed() error {
	switch {
	case p.state == bodyConnectionClose:
		if err := p.handler.OnMessageComplete(); err != nil {
			return err
		}
	case p.state != method || len(p.startLineBuff) > 0:
		return ErrIncompleteMessage
	}

	return ErrConnectionClosed
}

func (p *HTTPRequestParser) feed(data []byte) (err error) {
	for i := 0; i < len(data); i++ {
		char := data[i]

		switch p.state {
		case method:
			if char == ' ' {
				if !IsMethodValid(p.startLineBuff) {
					return ErrInvalidMethod
				}

				if err = p.handler.OnMethod(p.startLineBuff); err != nil {
					return err
				}

				p.startLineOffset = len(p.startLineBuff)
				p.state = path
				break
			} else if (char == '\r' || char == '\n') && len(p.startLineBuff) == 0 {
				// rfc7230, 3.5: empty lines before the request-line are ignored
				break
			}

			p.startLineBuff = append(p.startLineBuff, char)

			if len(p.startLineBuff) > maxMethodLength {
				return ErrInvalidMethod
			}
		case path:
			if char == ' ' {
				if len(p.startLineBuff) == p.startLineOffset {
					return ErrInvalidPath
				}

				if err = p.handler.OnPath(p.startLineBuff[p.startLineOffset:]); err != nil {
					return err
				}

				p.startLineOffset = len(p.startLineBuff)
				p.state = protocol
				break
			} else if char < ' ' || char == 0x7f {
				return ErrInvalidPath
			}

			p.startLineBuff = append(p.startLineBuff, char)

			if len(p.startLineBuff)-p.startLineOffset > p.settings.MaxPathLength {
				return ErrBufferOverflow
			}
		case protocol:
			switch char {
			case '\r':
				p.state = protocolCR
			case '\n':
				if err = p.protocolComplete(); err != nil {
					return err
				}
			default:
				p.startLineBuff = append(p.startLineBuff, char)

				if len(p.startLineBuff)-p.startLineOffset > maxProtocolLength {
					return ErrBufferOverflow
				}
			}
		case protocolCR:
			if char != '\n' {
				return ErrRequestSyntaxError
			}

			if err = p.protocolComplete(); err != nil {
				return err
			}
		case headerLineBegin:
			switch {
			case char == '\r':
				p.state = headersEndCR
			case char == '\n':
				if err = p.headersComplete(); err != nil {
					return err
				}
			case httpguts.IsTokenRune(rune(char)):
				p.headersBuffer = append(p.headersBuffer[:0], char)
				p.state = headerKey
			default:
				// obsolete line folding is rejected as well
				return ErrInvalidHeader
			}
		case headerKey:
			if char == ':' {
				p.headerValueBegin = len(p.headersBuffer)
				p.state = headerColon
				break
			} else if !httpguts.IsTokenRune(rune(char)) {
				return ErrInvalidHeader
			}

			p.headersBuffer = append(p.headersBuffer, char)

			if len(p.headersBuffer) > p.settings.MaxHeaderLineLength {
				return ErrBufferOverflow
			}
		case headerColon:
			switch char {
			case ' ', '\t':
			case '\r':
				p.state = headerValueCR
			case '\n':
				if err = p.headerComplete(); err != nil {
					return err
				}
			default:
				p.headersBuffer = append(p.headersBuffer, char)
				p.state = headerValue
			}
		case headerValue:
			switch char {
			case '\r':
				p.state = headerValueCR
			case '\n':
				if err = p.headerComplete(); err != nil {
					return err
				}
			default:
				p.headersBuffer = append(p.headersBuffer, char)

				if len(p.headersBuffer) > p.settings.MaxHeaderLineLength {
					return ErrBufferOverflow
				}
			}
		case headerValueCR:
			if char != '\n' {
				return ErrRequestSyntaxError
			}

			if err = p.headerComplete(); err != nil {
				return err
			}
		case headersEndCR:
			if char != '\n' {
				return ErrRequestSyntaxError
			}

			if err = p.headersComplete(); err != nil {
				return err
			}
		case bodyIdentity:
			n := min(p.bodyBytesLeft, len(data)-i)

			if err = p.handler.OnBody(data[i : i+n]); err != nil {
				return err
			}

			p.bodyBytesLeft -= n
			i += n - 1

			if p.bodyBytesLeft == 0 {
				if err = p.messageComplete(); err != nil {
					return err
				}
			}
		case bodyChunked:
			done, extra, err := p.chunksParser.Feed(data[i:])
			if err != nil {
				return err
			}

			if !done {
				return nil
			}

			// extra is the tail of data, it's parsed as the next request
			i = len(data) - len(extra) - 1

			if err = p.messageComplete(); err != nil {
				return err
			}
		case bodyConnectionClose:
			p.bodyBytesLeft -= len(data) - i

			if p.bodyBytesLeft < 0 {
				return ErrBodyTooBig
			}

			return p.handler.OnBody(data[i:])
		default:
			return ErrParserIsDead
		}
	}

	return nil
}

func (p *HTTPRequestParser) protocolComplete() (err error) {
	proto := p.startLineBuff[p.startLineOffset:]

	if !IsProtocolSupported(proto) {
		return ErrProtocolNotSupported
	}

	if err = p.handler.OnProtocol(proto); err != nil {
		return err
	}

	p.state = headerLineBegin

	return p.handler.OnHeadersBegin()
}

func (p *HTTPRequestParser) headerComplete() (err error) {
	key := p.headersBuffer[:p.headerValueBegin]
	value := bytes.TrimRight(p.headersBuffer[p.headerValueBegin:], " \t")

	if len(key) == 0 || !httpguts.ValidHeaderFieldValue(string(value)) {
		return ErrInvalidHeader
	}

	p.headersCount++
	if p.headersCount > p.settings.MaxHeaders {
		return ErrTooManyHeaders
	}

	if err = p.handler.OnHeader(key, value); err != nil {
		return err
	}

	switch {
	case bytes.EqualFold(key, contentLength):
		if p.bodyBytesLeft, err = parseUint(value); err != nil {
			return err
		}

		p.hasContentLength = true
	case bytes.EqualFold(key, transferEncoding):
		p.isChunked = bytes.EqualFold(value, chunked)
	case bytes.EqualFold(key, connection):
		p.closeConnection = bytes.EqualFold(value, closeConnection)
	}

	p.headersBuffer = p.headersBuffer[:0]
	p.state = headerLineBegin

	return nil
}

// headersComplete decides how the body is delimited
func (p *HTTPRequestParser) headersComplete() (err error) {
	if err = p.handler.OnHeadersComplete(); err != nil {
		return err
	}

	switch {
	case p.isChunked:
		// rfc7230, 3.3.3: Transfer-Encoding overrides Content-Length
		p.chunksParser.Clear()
		p.state = bodyChunked
	case p.hasContentLength:
		if p.bodyBytesLeft > p.settings.MaxBodyLength {
			return ErrBodyTooBig
		}

		if p.bodyBytesLeft == 0 {
			return p.messageComplete()
		}

		p.state = bodyIdentity
	case p.closeConnection:
		p.bodyBytesLeft = p.settings.MaxBodyLength
		p.state = bodyConnectionClose
	default:
		return p.messageComplete()
	}

	return nil
}

func (p *HTTPRequestParser) messageComplete() (err error) {
	if err = p.handler.OnMessageComplete(); err != nil {
		return err
	}

	p.Clear()

	return p.handler.OnMessageBegin()
}

func (p *HTTPRequestParser) die(err error) {
	if err != ErrConnectionClosed {
		p.log.Debugw("request parser died", "error", err, "state", p.state)
	}

	p.state = dead
	// anyway we don't need them anymore
	p.headersBuffer = nil
	p.startLineBuff = nil
}
