package multipart

import "strings"

// patternPrefix is the implicit line terminator and the two dashes every delimiter starts with
const patternPrefix = "\r\n--"

/*
	newBoundaryPattern builds the delimiter matched against the input. The token is
	kept as is: boundaries are compared case-sensitively, as rfc2046 defines them
*/
func newBoundaryPattern(boundary string, maxLength int) ([]byte, error) {
	switch {
	case len(boundary) == 0:
		return nil, ErrEmptyBoundary
	case len(boundary) > maxLength:
		return nil, ErrBoundaryTooLong
	case strings.ContainsAny(boundary, "\r\n"):
		return nil, ErrInvalidBoundary
	}

	pattern := make([]byte, 0, len(patternPrefix)+len(boundary))
	pattern = append(pattern, patternPrefix...)

	return append(pattern, boundary...), nil
}
