package httpparser

type OnBodyCallback func([]byte) error

/*
	chunkedBodyParser decodes a body sent with Transfer-Encoding: chunked. Chunk data is
	passed to the callback as it arrives, without buffering. Chunk extensions and trailer
	fields are skipped
*/
type chunkedBodyParser struct {
	callback OnBodyCallback
	state    chunkedState

	chunkLength int
	hexDigits   int
	bytesLeft   int
	bodyLength  int

	maxChunkSize  int
	maxBodyLength int
}

func NewChunkedBodyParser(callback OnBodyCallback, maxChunkSize, maxBodyLength int) *chunkedBodyParser {
	return &chunkedBodyParser{
		callback:      callback,
		state:         chunkLength,
		maxChunkSize:  maxChunkSize,
		maxBodyLength: maxBodyLength,
	}
}

func (p *chunkedBodyParser) Clear() {
	p.state = chunkLength
	p.chunkLength = 0
	p.hexDigits = 0
	p.bytesLeft = 0
	p.bodyLength = 0
}

/*
	Feed returns done once the last chunk and the trailer section are received. Bytes
	following the body are returned as extra, they belong to the next request
*/
func (p *chunkedBodyParser) Feed(data []byte) (done bool, extra []byte, err error) {
	if p.state == transferCompleted {
		// the parser is reused for the next body
		p.Clear()
	}

	for i := 0; i < len(data); i++ {
		char := data[i]

		switch p.state {
		case chunkLength:
			switch char {
			case '\r':
				if p.hexDigits == 0 {
					return p.fail(ErrInvalidChunkSize)
				}

				p.state = chunkLengthCR
			case '\n':
				if p.hexDigits == 0 {
					return p.fail(ErrInvalidChunkSize)
				}

				if err = p.chunkLengthComplete(); err != nil {
					return p.fail(err)
				}
			case ';', ' ', '\t':
				if p.hexDigits == 0 {
					return p.fail(ErrInvalidChunkSize)
				}

				p.state = chunkExtension
			default:
				digit, ok := unhex(char)
				if !ok {
					return p.fail(ErrInvalidChunkSize)
				}

				p.chunkLength = p.chunkLength<<4 | digit
				p.hexDigits++

				if p.chunkLength > p.maxChunkSize {
					return p.fail(ErrTooBigChunkSize)
				}
			}
		case chunkExtension:
			switch char {
			case '\r':
				p.state = chunkLengthCR
			case '\n':
				if err = p.chunkLengthComplete(); err != nil {
					return p.fail(err)
				}
			}
		case chunkLengthCR:
			if char != '\n' {
				return p.fail(ErrInvalidChunkSplitter)
			}

			if err = p.chunkLengthComplete(); err != nil {
				return p.fail(err)
			}
		case chunkBody:
			n := min(p.bytesLeft, len(data)-i)

			if err = p.callback(data[i : i+n]); err != nil {
				return p.fail(err)
			}

			p.bytesLeft -= n
			i += n - 1

			if p.bytesLeft == 0 {
				p.state = chunkBodyEnd
			}
		case chunkBodyEnd:
			switch char {
			case '\r':
				p.state = chunkBodyCR
			case '\n':
				p.nextChunk()
			default:
				return p.fail(ErrInvalidChunkSplitter)
			}
		case chunkBodyCR:
			if char != '\n' {
				return p.fail(ErrInvalidChunkSplitter)
			}

			p.nextChunk()
		case trailerLineBegin:
			switch char {
			case '\r':
				p.state = trailerCR
			case '\n':
				p.state = transferCompleted

				return true, data[i+1:], nil
			default:
				p.state = trailerLine
			}
		case trailerLine:
			if char == '\n' {
				p.state = trailerLineBegin
			}
		case trailerCR:
			if char != '\n' {
				return p.fail(ErrInvalidChunkSplitter)
			}

			p.state = transferCompleted

			return true, data[i+1:], nil
		}
	}

	return false, nil, nil
}

func (p *chunkedBodyParser) chunkLengthComplete() error {
	if p.chunkLength == 0 {
		p.state = trailerLineBegin

		return nil
	}

	p.bodyLength += p.chunkLength
	if p.bodyLength > p.maxBodyLength {
		return ErrBodyTooBig
	}

	p.bytesLeft = p.chunkLength
	p.state = chunkBody

	return nil
}

func (p *chunkedBodyParser) nextChunk() {
	p.state = chunkLength
	p.chunkLength = 0
	p.hexDigits = 0
}

func (p *chunkedBodyParser) fail(err error) (bool, []byte, error) {
	p.state = transferCompleted

	return true, nil, err
}
