package multipart

import (
	"bytes"

	"go.uber.org/zap"
)

var cr = []byte{'\r'}

/*
	Parser reconstructs the parts of a multipart/form-data body from a stream of chunks,
	whatever their boundaries are. It is not safe for concurrent use: one parser per body
*/
type Parser struct {
	handler  Handler
	settings Settings
	log      *zap.SugaredLogger

	state   parsingState
	mode    Mode
	pattern []byte
	// bpos is how many pattern bytes are matched so far
	bpos int
	// boundarypos is the length of the candidate line (content and terminator),
	// counted from the beginning of the withheld run
	boundarypos int
	// firstByte is the first byte of the line following the candidate terminator.
	// Zero while it is not known yet
	firstByte byte
	// crAside is set when a chunk ended with CR, so it's unknown yet whether LF follows
	crAside bool

	boundaryPieces pieces
	partPieces     pieces
	// lineStart is the offset of the current header line in partPieces. Everything
	// before it are folded lines waiting for their continuation
	lineStart   int
	foldPending bool
	// lineOverflow is set while the rest of a too long header line is being dropped
	lineOverflow bool

	current *Part
	parts   []*Part

	boundaryCount int
	seenLast      bool
	anomalies     Anomaly
	overhead      int64
	finalized     bool
}

/*
	Returns a parser ready to be fed. The handler may be nil, in this case parts are
	only collected into the registry
*/
func NewParser(boundary string, handler Handler, settings Settings) (*Parser, error) {
	settings = PrepareSettings(settings)

	pattern, err := newBoundaryPattern(boundary, settings.MaxBoundaryLength)
	if err != nil {
		return nil, err
	}

	if handler == nil {
		handler = nopHandler{}
	}

	return &Parser{
		handler:        handler,
		settings:       settings,
		log:            settings.Logger,
		state:          eBoundary,
		mode:           ModeLine,
		pattern:        pattern,
		bpos:           2, // the very first delimiter has no line terminator before it
		boundaryPieces: newPieces(len(pattern)),
		partPieces:     newPieces(settings.InitialPiecesBufferLength),
	}, nil
}

// Feed processes the next chunk of the body. Chunks must be fed in the stream order
func (p *Parser) Feed(data []byte) error {
	switch {
	case p.state == eDead:
		return ErrParserIsDead
	case p.finalized:
		return ErrParserFinalized
	}

	if err := p.parse(data); err != nil {
		p.die()

		return err
	}

	return nil
}

/*
	Finalize must be called once, after the last chunk. It flushes the withheld bytes and
	finalizes the part that is still open. The registry is not modified after that
*/
func (p *Parser) Finalize() error {
	switch {
	case p.state == eDead:
		return ErrParserIsDead
	case p.finalized:
		return ErrParserFinalized
	}

	p.finalized = true

	if err := p.processAside(false); err != nil {
		p.die()

		return err
	}

	if p.current != nil {
		if err := p.finalizePart(); err != nil {
			p.die()

			return err
		}
	}

	if !p.seenLast {
		p.recordAnomaly(AnomalyIncomplete)
	}

	p.boundaryPieces.release()
	p.partPieces.release()

	p.log.Debugw("multipart body finalized",
		"parts", len(p.parts),
		"boundaries", p.boundaryCount,
		"anomalies", p.anomalies.String(),
	)

	return nil
}

// Parts returns finalized parts in the order they appeared in the body
func (p *Parser) Parts() []*Part {
	return p.parts
}

func (p *Parser) BoundaryCount() int {
	return p.boundaryCount
}

func (p *Parser) SeenLastBoundary() bool {
	return p.seenLast
}

func (p *Parser) Anomalies() Anomaly {
	return p.anomalies
}

// Overhead returns how many bytes were consumed by delimiters, their trailing dashes
// and the line terminators around them
func (p *Parser) Overhead() int64 {
	return p.overhead
}

func (p *Parser) parse(data []byte) (err error) {
	var (
		pos, startpos int
		// lineEnd is where the candidate line ends in the current chunk. It stays zero
		// when the line was withheld in boundaryPieces during one of the previous calls
		lineEnd int
	)

	for pos < len(data) {
		switch p.state {
		case eData:
			if p.crAside {
				if data[pos] == '\n' {
					pos++
					lineEnd = pos
					p.expectBoundary(pos - startpos)
					continue
				}

				p.crAside = false

				if err = p.handleData(cr, false); err != nil {
					return err
				}
			}

			if lf := bytes.IndexByte(data[pos:], '\n'); lf != -1 {
				pos += lf + 1
				lineEnd = pos
				p.expectBoundary(pos - startpos)
				continue
			}

			end := len(data)
			pos = end

			if data[end-1] == '\r' {
				// we don't know yet whether it is a line terminator
				end--
				p.crAside = true
			}

			if err = p.handleData(data[startpos:end], false); err != nil {
				return err
			}
		case eBoundary:
			matched := false

			for pos < len(data) && !matched {
				if p.bpos == 2 {
					p.firstByte = data[pos]
				}

				if data[pos] != p.pattern[p.bpos] {
					break
				}

				pos++
				p.bpos++
				matched = p.bpos == len(p.pattern)
			}

			switch {
			case matched:
				if err = p.processAside(true); err != nil {
					return err
				}

				content, terminator := trimLineEnd(data[startpos:lineEnd])
				p.overhead += int64(terminator + len(p.pattern) - 2)

				if err = p.handleData(content, false); err != nil {
					return err
				}

				if err = p.handleBoundary(); err != nil {
					return err
				}

				p.state = eBoundaryIsLast2
			case pos < len(data):
				// mismatch. The withheld line is a complete content line; the matched part
				// of the pattern can't contain a line terminator, so the data parsing
				// resumes right at the mismatching byte
				if err = p.processAside(false); err != nil {
					return err
				}

				if err = p.handleData(data[startpos:lineEnd], true); err != nil {
					return err
				}

				startpos = lineEnd
				p.state = eData
			}
		case eBoundaryIsLast2:
			if data[pos] == '-' {
				pos++
				p.overhead++
				p.state = eBoundaryIsLast1
				break
			}

			p.state = eBoundaryEatLF
		case eBoundaryIsLast1:
			if data[pos] == '-' {
				pos++
				p.overhead++
				p.seenLast = true
			} else {
				p.recordAnomaly(AnomalyMalformedLastBoundary)
			}

			p.state = eBoundaryEatLF
		case eBoundaryEatLF:
			switch data[pos] {
			case '\n':
				p.state = eData
				startpos = pos + 1
			case '\r', ' ', '\t':
				// line terminator and transport padding
			default:
				p.recordAnomaly(AnomalyBoundaryLineJunk)
			}

			pos++
			p.overhead++
		default:
			return ErrParserIsDead
		}
	}

	if p.state == eBoundary {
		// the chunk is over while a delimiter is still possible: withhold the run until
		// the next call decides what it is
		p.boundaryPieces.append(data[startpos:])
	}

	return nil
}

// expectBoundary switches to testing whether a delimiter follows the line terminator just seen
func (p *Parser) expectBoundary(lineLength int) {
	p.boundarypos = lineLength
	p.bpos = 2
	p.firstByte = 0
	p.state = eBoundary
}

/*
	processAside resolves the bytes withheld while a delimiter candidate spanned chunks.
	The withheld run holds at most one content line followed by the matched part of the
	pattern.

	On a match the line terminator and everything after it belong to the delimiter, so
	only the line content is dispatched. Otherwise everything is content: the lone CR
	first, then the line as a complete one, then the rest as data. In data mode the
	line flag makes no difference, so both modes are served by the same path
*/
func (p *Parser) processAside(matched bool) (err error) {
	defer func() {
		p.boundaryPieces.clear()
		p.crAside = false
	}()

	if matched {
		if p.crAside {
			p.overhead++
		}

		if p.boundaryPieces.count() == 0 {
			return nil
		}

		content, terminator := trimLineEnd(p.boundaryPieces.piece(0)[:p.boundarypos])
		p.overhead += int64(terminator)

		return p.handleData(content, false)
	}

	if p.crAside {
		if err = p.handleData(cr, false); err != nil {
			return err
		}
	}

	for i := 0; i < p.boundaryPieces.count(); i++ {
		piece := p.boundaryPieces.piece(i)

		if i == 0 {
			if err = p.handleData(piece[:p.boundarypos], true); err != nil {
				return err
			}

			piece = piece[p.boundarypos:]
		}

		if err = p.handleData(piece, false); err != nil {
			return err
		}
	}

	return nil
}

// handleBoundary finalizes the current part, if any, when a delimiter is recognized
func (p *Parser) handleBoundary() error {
	if p.seenLast {
		p.recordAnomaly(AnomalyBoundaryAfterLast)
	}

	p.boundaryCount++
	p.mode = ModeLine

	if p.current == nil {
		return nil
	}

	return p.finalizePart()
}

/*
	handleData dispatches content to the current part, creating it if needed. isLine
	marks a span that ends with a complete line terminator
*/
func (p *Parser) handleData(data []byte, isLine bool) error {
	if len(data) == 0 {
		return nil
	}

	if p.current == nil {
		if err := p.createPart(); err != nil {
			return err
		}
	}

	part := p.current
	part.Len += int64(len(data))

	switch {
	case part.Kind == KindPreamble, part.Kind == KindEpilogue:
		// we don't keep preamble and epilogue, only their length
		return nil
	case p.mode == ModeData:
		return p.handlePartData(part, data)
	default:
		return p.handlePartLine(part, data, isLine)
	}
}

func (p *Parser) createPart() error {
	if len(p.parts) >= p.settings.MaxParts {
		return ErrTooManyParts
	}

	part := &Part{
		Seq:  len(p.parts),
		Kind: KindData,
	}

	switch {
	case p.boundaryCount == 0:
		part.Kind = KindPreamble
	case p.seenLast:
		part.Kind = KindEpilogue
	}

	p.current = part
	p.resetPartPieces()

	return p.handler.OnPartBegin(part)
}

func (p *Parser) handlePartLine(part *Part, data []byte, isLine bool) error {
	if !p.lineOverflow && p.partPieces.len()+contentLength(data, isLine) > p.settings.MaxHeaderLineLength {
		// the line is dropped, but the part is still segmented
		p.lineOverflow = true
		p.recordAnomaly(AnomalyHeaderLineTooLong)
	}

	if p.lineOverflow {
		if isLine {
			p.resetPartPieces()
			// folded continuations belong to the dropped line too
			p.lineOverflow = p.firstByte == ' ' || p.firstByte == '\t'
		}

		return nil
	}

	p.partPieces.append(data)

	if !isLine {
		return nil
	}

	// the terminator is stripped from the assembled line, as CR and LF may come in
	// different pieces
	line, _ := trimLineEnd(p.partPieces.bytes()[p.lineStart:])
	p.partPieces.truncate(p.lineStart + len(line))

	if len(line) == 0 {
		// empty line separates the header region from the data
		if p.foldPending {
			if err := p.handler.OnHeaderLine(part, p.partPieces.bytes()); err != nil {
				return err
			}
		}

		p.resetPartPieces()
		p.mode = ModeData
		part.inBody = true

		return p.handler.OnHeadersComplete(part)
	}

	if p.firstByte == ' ' || p.firstByte == '\t' {
		// the next line continues this one
		p.foldPending = true
		p.lineStart = p.partPieces.len()

		return nil
	}

	err := p.handler.OnHeaderLine(part, p.partPieces.bytes())
	p.resetPartPieces()

	return err
}

func (p *Parser) handlePartData(part *Part, data []byte) error {
	if part.Kind != KindFile {
		room := p.settings.MaxPartLength - p.partPieces.len()

		if len(data) > room {
			// only the beginning is retained, the handler still gets everything
			p.partPieces.append(data[:room])

			if !part.Truncated {
				part.Truncated = true
				p.recordAnomaly(AnomalyPartTruncated)
			}
		} else {
			p.partPieces.append(data)
		}
	}

	return p.handler.OnPartData(part, data)
}

// finalizePart assembles the retained pieces into the part's value and moves the
// part into the registry
func (p *Parser) finalizePart() error {
	part := p.current
	p.current = nil

	if part.Kind != KindPreamble && part.Kind != KindEpilogue && p.partPieces.len() > 0 {
		part.Value = append([]byte(nil), p.partPieces.bytes()...)
	}

	p.resetPartPieces()
	part.finalized = true
	p.parts = append(p.parts, part)

	return p.handler.OnPartComplete(part)
}

func (p *Parser) resetPartPieces() {
	p.partPieces.clear()
	p.lineStart = 0
	p.foldPending = false
	p.lineOverflow = false
}

func (p *Parser) recordAnomaly(anomaly Anomaly) {
	if p.anomalies.Has(anomaly) {
		return
	}

	p.anomalies |= anomaly
	p.log.Debugw("multipart anomaly",
		"anomaly", anomaly.String(),
		"boundaries", p.boundaryCount,
		"parts", len(p.parts),
	)
}

func (p *Parser) die() {
	p.state = eDead
	p.current = nil
	// anyway we don't need them anymore
	p.boundaryPieces.release()
	p.partPieces.release()
}

// contentLength is the length of data without the line terminator it may end with
func contentLength(data []byte, isLine bool) int {
	if !isLine {
		return len(data)
	}

	content, _ := trimLineEnd(data)

	return len(content)
}

// trimLineEnd strips a trailing LF or CRLF, returning the content and the terminator length
func trimLineEnd(line []byte) (content []byte, terminator int) {
	content = line

	if len(content) > 0 && content[len(content)-1] == '\n' {
		content = content[:len(content)-1]

		if len(content) > 0 && content[len(content)-1] == '\r' {
			content = content[:len(content)-1]
		}
	}

	return content, len(line) - len(content)
}
