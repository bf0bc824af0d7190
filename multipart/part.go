package multipart

type PartKind uint8

const (
	// KindPreamble is the content preceding the first boundary
	KindPreamble PartKind = iota + 1
	// KindData is an ordinary part: a header region, an empty line, then data
	KindData
	// KindFile is an ordinary part whose data is streamed and never retained
	KindFile
	// KindEpilogue is the content following the terminal boundary
	KindEpilogue
)

func (k PartKind) String() string {
	switch k {
	case KindPreamble:
		return "preamble"
	case KindData:
		return "data"
	case KindFile:
		return "file"
	case KindEpilogue:
		return "epilogue"
	default:
		return "unknown"
	}
}

/*
	Part is a single section of the multipart body. It is created lazily, on the first
	byte of its content, and handed over to the parts registry once finalized. After that
	it is never mutated again
*/
type Part struct {
	// Seq is the position of the part in the registry
	Seq  int
	Kind PartKind
	// Len is the amount of bytes dispatched to the part, header lines and their
	// terminators included
	Len int64
	// Value is the retained content. It is nil for preamble, epilogue and file parts
	Value []byte
	// Truncated is set when Value holds only the first MaxPartLength bytes of the content
	Truncated bool

	inBody    bool
	finalized bool
}

// MarkFile promotes an ordinary part to a file part, so its data is not retained.
// It is only possible while the part is still in its header region
func (part *Part) MarkFile() bool {
	if part.Kind != KindData || part.inBody || part.finalized {
		return false
	}

	part.Kind = KindFile

	return true
}

func (part *Part) InBody() bool {
	return part.inBody
}
