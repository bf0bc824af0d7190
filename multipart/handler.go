package multipart

/*
	Handler is a downstream collaborator the parser reports parts to. Byte slices passed
	to the handler are owned by the parser and are valid only during the call. Any
	returned error is fatal for the parser
*/
type Handler interface {
	OnPartBegin(part *Part) error
	// OnHeaderLine is called once per logical header line, folded lines already joined
	// and the line terminator stripped
	OnHeaderLine(part *Part, line []byte) error
	OnHeadersComplete(part *Part) error
	OnPartData(part *Part, data []byte) error
	OnPartComplete(part *Part) error
}

type nopHandler struct{}

func (nopHandler) OnPartBegin(*Part) error          { return nil }
func (nopHandler) OnHeaderLine(*Part, []byte) error { return nil }
func (nopHandler) OnHeadersComplete(*Part) error    { return nil }
func (nopHandler) OnPartData(*Part, []byte) error   { return nil }
func (nopHandler) OnPartComplete(*Part) error       { return nil }
