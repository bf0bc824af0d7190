package formdata

import (
	"net/textproto"

	"github.com/floordiv/snowdrop-multipart/multipart"
)

// Field is a single part of the form with its headers resolved
type Field struct {
	Seq         int
	Kind        multipart.PartKind
	Name        string
	Filename    string
	ContentType string
	Header      textproto.MIMEHeader
	// Value is the retained content. File fields keep nothing, their data goes to the FileSink
	Value []byte
	// Truncated is set when Value was cut at the parser's MaxPartLength
	Truncated bool
	// Size is the amount of content bytes, headers excluded
	Size int64
	// Invalid holds header lines that were rejected, each prefixed with the reason
	Invalid []string
}

func (f *Field) IsFile() bool {
	return f.Kind == multipart.KindFile
}

/*
	FileSink receives the content of file fields as it arrives. The data slice is only
	valid during the call. A returned error stops the parser
*/
type FileSink func(field *Field, data []byte) error
