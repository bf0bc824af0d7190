package inspect

import (
	"errors"
	"fmt"
	"net/textproto"

	"github.com/floordiv/snowdrop-multipart/formdata"
	"github.com/floordiv/snowdrop-multipart/httpparser"
	"github.com/floordiv/snowdrop-multipart/multipart"
	"go.uber.org/zap"
)

/*
	Inspector follows a single client connection. It parses the requests one after
	another and, for every multipart/form-data request, runs a multipart parser over the
	body as it arrives. Completed requests are handed to the sink in the order they
	were sent
*/
type Inspector struct {
	settings Settings
	log      *zap.SugaredLogger
	sink     func(*Transaction)

	parser  *httpparser.HTTPRequestParser
	current *Transaction
	body    *multipart.Parser
	seq     int
}

func New(settings Settings, sink func(*Transaction)) (*Inspector, error) {
	settings = PrepareSettings(settings)

	inspector := &Inspector{
		settings: settings,
		log:      settings.Logger,
		sink:     sink,
	}

	parser, err := httpparser.NewHTTPRequestParser(inspector, settings.HTTP)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}

	inspector.parser = parser

	return inspector, nil
}

// Feed passes the next piece of the client's stream. Empty data is ignored, use Close
// to signal the end of the stream
func (i *Inspector) Feed(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if err := i.parser.Feed(data); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	return nil
}

/*
	Close tells the inspector the stream is over. A body delimited by the connection
	close is completed here. A request cut in the middle is still handed to the sink,
	marked as incomplete
*/
func (i *Inspector) Close() error {
	err := i.parser.Feed(nil)

	switch {
	case errors.Is(err, httpparser.ErrConnectionClosed):
		return nil
	case errors.Is(err, httpparser.ErrIncompleteMessage):
		i.current.Incomplete = true

		if completeErr := i.OnMessageComplete(); completeErr != nil {
			return fmt.Errorf("inspect: %w", completeErr)
		}
	}

	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	return nil
}

func (i *Inspector) OnMessageBegin() error {
	i.current = &Transaction{
		Seq:    i.seq,
		Header: make(textproto.MIMEHeader),
	}
	i.seq++

	return nil
}

func (i *Inspector) OnMethod(method []byte) error {
	i.current.Method = string(method)

	return nil
}

func (i *Inspector) OnPath(path []byte) error {
	i.current.Path = string(path)

	return nil
}

func (i *Inspector) OnProtocol(proto []byte) error {
	i.current.Protocol = string(proto)

	return nil
}

func (i *Inspector) OnHeadersBegin() error {
	return nil
}

func (i *Inspector) OnHeader(key, value []byte) error {
	i.current.Header.Add(string(key), string(value))

	return nil
}

func (i *Inspector) OnHeadersComplete() error {
	tx := i.current

	contentType := tx.Header.Get("Content-Type")
	if len(contentType) == 0 {
		return nil
	}

	boundary, err := formdata.BoundaryFromContentType(contentType)
	switch {
	case errors.Is(err, formdata.ErrNotMultipart):
		return nil
	case err != nil:
		tx.BoundaryErr = err
		i.log.Debugw("multipart request without usable boundary",
			"seq", tx.Seq,
			"contentType", contentType,
		)

		return nil
	}

	form := formdata.NewForm(i.settings.FileSink, i.log)

	body, err := multipart.NewParser(boundary, form, i.settings.Multipart)
	if err != nil {
		tx.BoundaryErr = err
		i.log.Debugw("invalid multipart boundary",
			"seq", tx.Seq,
			"boundary", boundary,
			"error", err,
		)

		return nil
	}

	tx.Boundary = boundary
	tx.Form = form
	i.body = body

	return nil
}

func (i *Inspector) OnBody(chunk []byte) error {
	i.current.BodyLength += int64(len(chunk))

	if i.body == nil {
		return nil
	}

	if err := i.body.Feed(chunk); err != nil {
		i.bodyFailed(err)
	}

	return nil
}

func (i *Inspector) OnMessageComplete() error {
	tx := i.current

	if i.body != nil {
		if err := i.body.Finalize(); err != nil {
			i.bodyFailed(err)
		} else {
			tx.Parts = i.body.Parts()
			tx.BoundaryCount = i.body.BoundaryCount()
			tx.Anomalies = i.body.Anomalies()
			tx.Overhead = i.body.Overhead()
			tx.Form.Anomalies = tx.Anomalies
			i.body = nil
		}
	}

	i.log.Debugw("transaction complete",
		"seq", tx.Seq,
		"method", tx.Method,
		"path", tx.Path,
		"bodyLength", tx.BodyLength,
		"parts", len(tx.Parts),
		"anomalies", tx.Anomalies.String(),
	)

	if i.sink != nil {
		i.sink(tx)
	}

	return nil
}

func (i *Inspector) bodyFailed(err error) {
	i.current.BodyErr = err
	i.log.Debugw("multipart body parser failed",
		"seq", i.current.Seq,
		"error", err,
	)
	// the rest of the body is only counted
	i.body = nil
}
