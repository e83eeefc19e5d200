package protocol

import (
	"bytes"

	"github.com/kfcemployee/bgserver/server/errs"
)

// tail of the JPEG part's own header block, payload starts right after it
var DefaultMarker = []byte("image/jpeg\r\n\r\n")

var delimPrefix = []byte("\r\n--")

// Part is a half-open byte range [Start, End) inside a body
type Part struct {
	Start, End int
}

func (p Part) Len() int {
	return p.End - p.Start
}

// view of the part inside body, no copy
func (p Part) Of(body []byte) []byte {
	return body[p.Start:p.End:p.End]
}

// locate the single payload of a multipart body:
// it starts after the first marker and ends at the first \r\n--boundary after that
func Extract(body, boundary, marker []byte) (Part, error) {
	if len(boundary) == 0 {
		return Part{}, errs.New(errs.MalformedMultipart, "extract part", errNoBoundary)
	}

	idx := bytes.Index(body, marker)
	if idx == -1 {
		return Part{}, errs.New(errs.MalformedMultipart, "extract part", errNoMarker)
	}
	start := idx + len(marker)

	delim := make([]byte, 0, len(delimPrefix)+len(boundary))
	delim = append(delim, delimPrefix...)
	delim = append(delim, boundary...)

	idx = bytes.Index(body[start:], delim)
	if idx == -1 {
		return Part{}, errs.New(errs.MalformedMultipart, "extract part", errNoDelimiter)
	}

	return Part{Start: start, End: start + idx}, nil
}
