package formdata

import (
	"bytes"
	"mime"
	"net/textproto"

	"github.com/floordiv/snowdrop-multipart/multipart"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
)

const (
	headerContentDisposition = "Content-Disposition"
	headerContentType        = "Content-Type"
)

/*
	Form assembles the parts reported by a multipart.Parser into fields. It implements
	multipart.Handler, so it is passed to multipart.NewParser directly. Preamble and
	epilogue are not fields and are skipped
*/
type Form struct {
	Fields    []*Field
	Anomalies multipart.Anomaly

	sink    FileSink
	log     *zap.SugaredLogger
	current *Field
}

func NewForm(sink FileSink, logger *zap.SugaredLogger) *Form {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Form{
		sink: sink,
		log:  logger,
	}
}

// Get returns the first field with the given name, or nil
func (f *Form) Get(name string) *Field {
	for _, field := range f.Fields {
		if field.Name == name {
			return field
		}
	}

	return nil
}

func (f *Form) Files() (files []*Field) {
	for _, field := range f.Fields {
		if field.IsFile() {
			files = append(files, field)
		}
	}

	return files
}

func (f *Form) OnPartBegin(part *multipart.Part) error {
	if part.Kind == multipart.KindPreamble || part.Kind == multipart.KindEpilogue {
		f.current = nil

		return nil
	}

	f.current = &Field{
		Seq:    part.Seq,
		Kind:   part.Kind,
		Header: make(textproto.MIMEHeader),
	}

	return nil
}

func (f *Form) OnHeaderLine(part *multipart.Part, line []byte) error {
	field := f.current
	if field == nil {
		return nil
	}

	key, value, err := splitHeaderLine(line)
	if err != nil {
		f.reject(field, line, err)

		return nil
	}

	field.Header.Add(key, value)

	switch textproto.CanonicalMIMEHeaderKey(key) {
	case headerContentDisposition:
		disposition, params, err := mime.ParseMediaType(value)
		if err != nil {
			f.reject(field, line, err)

			return nil
		}

		if disposition == "form-data" {
			field.Name = params["name"]
		}

		if filename, ok := params["filename"]; ok {
			field.Filename = filename

			if part.MarkFile() {
				field.Kind = part.Kind
			}
		}
	case headerContentType:
		field.ContentType = value
	}

	return nil
}

func (f *Form) OnHeadersComplete(*multipart.Part) error {
	return nil
}

func (f *Form) OnPartData(part *multipart.Part, data []byte) error {
	field := f.current
	if field == nil {
		return nil
	}

	field.Size += int64(len(data))

	if part.Kind == multipart.KindFile && f.sink != nil {
		return f.sink(field, data)
	}

	return nil
}

func (f *Form) OnPartComplete(part *multipart.Part) error {
	field := f.current
	if field == nil {
		return nil
	}

	f.current = nil
	field.Kind = part.Kind
	field.Value = part.Value
	field.Truncated = part.Truncated
	f.Fields = append(f.Fields, field)

	f.log.Debugw("form field complete",
		"seq", field.Seq,
		"name", field.Name,
		"filename", field.Filename,
		"size", field.Size,
	)

	return nil
}

func (f *Form) reject(field *Field, line []byte, reason error) {
	field.Invalid = append(field.Invalid, reason.Error()+": "+string(line))
	f.log.Debugw("invalid part header",
		"seq", field.Seq,
		"line", string(line),
		"reason", reason,
	)
}

func splitHeaderLine(line []byte) (key, value string, err error) {
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return "", "", ErrMissingHeaderColon
	}

	key = string(line[:colon])
	if !httpguts.ValidHeaderFieldName(key) {
		return "", "", ErrInvalidHeaderName
	}

	value = textproto.TrimString(string(line[colon+1:]))
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", "", ErrInvalidHeaderValue
	}

	return key, value, nil
}
