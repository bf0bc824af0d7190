package formdata

import (
	"errors"
	"net/http"
)

var (
	// ErrNotMultipart and ErrMissingBoundary are the net/http ones, so callers
	// may compare against either
	ErrNotMultipart    = http.ErrNotMultipart
	ErrMissingBoundary = http.ErrMissingBoundary

	ErrMissingHeaderColon = errors.New("header line has no colon")
	ErrInvalidHeaderName  = errors.New("invalid header name")
	ErrInvalidHeaderValue = errors.New("invalid header value")
)
