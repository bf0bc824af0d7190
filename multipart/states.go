package multipart

type parsingState uint8

const (
	eData parsingState = iota + 1
	eBoundary
	eBoundaryIsLast2
	eBoundaryIsLast1
	eBoundaryEatLF

	eDead
)

// Mode is the way the content of the current part is consumed. It belongs to the
// parser, not to the part: every part starts in ModeLine right after a boundary.
type Mode uint8

const (
	ModeLine Mode = iota + 1
	ModeData
)

func (m Mode) String() string {
	switch m {
	case ModeLine:
		return "line"
	case ModeData:
		return "data"
	default:
		return "unknown"
	}
}
