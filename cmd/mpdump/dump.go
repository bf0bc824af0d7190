package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/floordiv/snowdrop-multipart/formdata"
	"github.com/floordiv/snowdrop-multipart/inspect"
	"github.com/floordiv/snowdrop-multipart/multipart"
	"go.uber.org/zap"
)

type config struct {
	chunkSize int
	boundary  string
	preview   int
	multipart multipart.Settings
}

func run(cfg config, in io.Reader, out io.Writer, log *zap.SugaredLogger) error {
	if cfg.chunkSize < 1 {
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		cfg.chunkSize = max(len(data), 1)
		in = bytes.NewReader(data)
	}

	if len(cfg.boundary) > 0 {
		return dumpBody(cfg, in, out)
	}

	return dumpStream(cfg, in, out, log)
}

// dumpBody parses the input as a single multipart body
func dumpBody(cfg config, in io.Reader, out io.Writer) error {
	form, err := formdata.Parse(in, cfg.boundary, formdata.Options{
		ChunkSize: cfg.chunkSize,
		Parser:    cfg.multipart,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "body anomalies=%s\n", form.Anomalies)
	printFields(out, form.Fields, cfg.preview)

	return nil
}

// dumpStream parses the input as a client's side of an HTTP connection
func dumpStream(cfg config, in io.Reader, out io.Writer, log *zap.SugaredLogger) error {
	inspector, err := inspect.New(inspect.Settings{
		Multipart: cfg.multipart,
		Logger:    log,
	}, func(tx *inspect.Transaction) {
		printTransaction(out, tx, cfg.preview)
	})
	if err != nil {
		return err
	}

	buff := make([]byte, cfg.chunkSize)

	for {
		n, err := in.Read(buff)
		if n > 0 {
			if feedErr := inspector.Feed(buff[:n]); feedErr != nil {
				return feedErr
			}
		}

		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}

	return inspector.Close()
}

func printTransaction(out io.Writer, tx *inspect.Transaction, preview int) {
	fmt.Fprintf(out, "#%d %s %s %s body=%d", tx.Seq, tx.Method, tx.Path, tx.Protocol, tx.BodyLength)

	if tx.Incomplete {
		fmt.Fprint(out, " incomplete")
	}

	switch {
	case tx.BoundaryErr != nil:
		fmt.Fprintf(out, " boundary-error=%q\n", tx.BoundaryErr.Error())

		return
	case !tx.IsMultipart():
		fmt.Fprintln(out)

		return
	}

	fmt.Fprintf(out, " boundary=%q boundaries=%d overhead=%d anomalies=%s\n",
		tx.Boundary, tx.BoundaryCount, tx.Overhead, tx.Anomalies)

	if tx.BodyErr != nil {
		fmt.Fprintf(out, "  body-error=%q\n", tx.BodyErr.Error())
	}

	for _, part := range tx.Parts {
		fmt.Fprintf(out, "  part %d %s len=%d\n", part.Seq, part.Kind, part.Len)
	}

	printFields(out, tx.Form.Fields, preview)
}

func printFields(out io.Writer, fields []*formdata.Field, preview int) {
	for _, field := range fields {
		fmt.Fprintf(out, "  field %q", field.Name)

		if field.IsFile() {
			fmt.Fprintf(out, " file=%q type=%q size=%d\n", field.Filename, field.ContentType, field.Size)
		} else {
			fmt.Fprintf(out, " value=%s", quotePreview(field.Value, preview))

			if field.Truncated {
				fmt.Fprint(out, " truncated")
			}

			fmt.Fprintln(out)
		}

		for _, invalid := range field.Invalid {
			fmt.Fprintf(out, "    invalid header %q\n", invalid)
		}
	}
}

func quotePreview(value []byte, limit int) string {
	if limit > 0 && len(value) > limit {
		return strconv.Quote(string(value[:limit])) + "..."
	}

	return strconv.Quote(string(value))
}
