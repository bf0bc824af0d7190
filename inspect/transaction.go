package inspect

import (
	"net/textproto"

	"github.com/floordiv/snowdrop-multipart/formdata"
	"github.com/floordiv/snowdrop-multipart/multipart"
)

// Transaction is a single request seen on the connection
type Transaction struct {
	// Seq is the position of the request on the connection, starting from zero
	Seq        int
	Method     string
	Path       string
	Protocol   string
	Header     textproto.MIMEHeader
	BodyLength int64
	// Incomplete is set when the connection was closed before the request ended
	Incomplete bool

	// multipart/form-data bodies only
	Boundary      string
	Form          *formdata.Form
	Parts         []*multipart.Part
	BoundaryCount int
	Anomalies     multipart.Anomaly
	Overhead      int64

	// BoundaryErr is set when the request claims a multipart body, but its boundary
	// can't be used
	BoundaryErr error
	// BodyErr is the error the multipart parser stopped with. The rest of the body is
	// still consumed, so the next requests on the connection are not affected
	BodyErr error
}

func (t *Transaction) IsMultipart() bool {
	return t.Form != nil
}
