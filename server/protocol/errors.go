package protocol

import "errors"

// causes wrapped into errs.Error for parsing failures
var (
	errNoMethod     = errors.New("missing request method")
	errNoPath       = errors.New("missing request path")
	errBadLength    = errors.New("non-numeric Content-Length")
	errNoBoundary   = errors.New("missing multipart boundary")
	errNoMarker     = errors.New("part header not found")
	errNoDelimiter  = errors.New("closing boundary not found")
	errHeadTooLarge = errors.New("header block exceeds limit")
)
