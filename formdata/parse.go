package formdata

import (
	"errors"
	"fmt"
	"io"

	"github.com/floordiv/snowdrop-multipart/multipart"
)

const defaultChunkSize = 4096

type Options struct {
	// ChunkSize is how many bytes are read from the reader at once
	ChunkSize int
	FileSink  FileSink
	// Parser configures the underlying multipart parser. Its logger is used by the form too
	Parser multipart.Settings
}

// Parse reads the whole multipart body from r and returns the assembled form
func Parse(r io.Reader, boundary string, opts Options) (*Form, error) {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = defaultChunkSize
	}

	opts.Parser = multipart.PrepareSettings(opts.Parser)
	form := NewForm(opts.FileSink, opts.Parser.Logger)

	parser, err := multipart.NewParser(boundary, form, opts.Parser)
	if err != nil {
		return nil, fmt.Errorf("formdata: %w", err)
	}

	buff := make([]byte, opts.ChunkSize)

	for {
		n, err := r.Read(buff)
		if n > 0 {
			if feedErr := parser.Feed(buff[:n]); feedErr != nil {
				return nil, fmt.Errorf("formdata: %w", feedErr)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("formdata: read body: %w", err)
		}
	}

	if err = parser.Finalize(); err != nil {
		return nil, fmt.Errorf("formdata: %w", err)
	}

	form.Anomalies = parser.Anomalies()

	return form, nil
}
