package multipart

import "errors"

var (
	ErrEmptyBoundary   = errors.New("boundary must not be empty")
	ErrBoundaryTooLong = errors.New("boundary is too long")
	ErrInvalidBoundary = errors.New("boundary must not contain line terminators")

	ErrTooManyParts = errors.New("too many parts")

	ErrParserIsDead    = errors.New("once error occurred, parser cannot be used anymore")
	ErrParserFinalized = errors.New("parser is already finalized")
)
