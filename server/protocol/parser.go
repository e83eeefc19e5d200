// parse raw bytes to HTTP Request struct w zero-copy
// only parser logic
package protocol

import (
	"bytes"

	"github.com/kfcemployee/bgserver/server/engine"
	"github.com/kfcemployee/bgserver/server/errs"
)

const (
	DefaultMaxHead = 20000 // max bytes before the blank line

	maxLengthDigits = 18 // fits int64 without overflow
)

var (
	crlf     = []byte("\r\n")
	headTerm = []byte("\r\n\r\n")

	contentTypeKey   = []byte("Content-Type")
	contentLengthKey = []byte("Content-Length")
	multipartPrefix  = []byte("multipart/form-data; boundary=")
)

// request struct, all slices are views into the session Buf
type Request struct {
	Method   []byte
	Path     []byte
	Protocol []byte // empty if the request line had only two tokens

	Boundary      []byte // from Content-Type: multipart/form-data; boundary=
	ContentLength int

	Body []byte // exactly ContentLength bytes
}

func (r *Request) IsMethod(m string) bool {
	return string(r.Method) == m
}

// stateless HTTPParser struct, limits only
// should be init in server.go
type HTTPParser struct {
	MaxHead int
}

func (p *HTTPParser) maxHead() int {
	if p.MaxHead > 0 {
		return p.MaxHead
	}
	return DefaultMaxHead
}

// feed is called after every read; it parses the head once when its blank
// line arrives and then only waits for s.Need bytes
func (p *HTTPParser) Feed(s *engine.Session, req *Request) (bool, error) {
	if s.Head == 0 {
		raw := s.Buf[:s.Offset]
		idx := bytes.Index(raw[s.Scan:], headTerm)
		if idx == -1 {
			if s.Offset >= p.maxHead() {
				return false, errs.New(errs.RequestTooLarge, "parse head", errHeadTooLarge)
			}
			// terminator may straddle two reads
			s.Scan = max(0, s.Offset-len(headTerm)+1)
			return false, nil
		}

		end := s.Scan + idx + len(headTerm)
		if end > p.maxHead() {
			return false, errs.New(errs.RequestTooLarge, "parse head", errHeadTooLarge)
		}
		if err := ParseHead(raw[:end], req); err != nil {
			return false, err
		}

		s.Head = end
		s.Need = end + req.ContentLength
		if s.Need > s.Max {
			return false, errs.New(errs.RequestTooLarge, "parse head", nil)
		}
	}

	if s.Offset < s.Need {
		return false, nil
	}
	req.Body = s.Buf[s.Head:s.Need:s.Need]
	return true, nil
}

// parse request line and headers; raw is the head up to and incl. the blank line,
// body is left unset
func ParseHead(raw []byte, req *Request) error {
	*req = Request{}

	// find end of line starting at crs, returns len(raw) if none
	findeol := func(crs int) int {
		idx := bytes.Index(raw[crs:], crlf)
		if idx == -1 {
			return len(raw)
		}
		return crs + idx
	}

	// request line: METHOD PATH [PROTOCOL]
	le := findeol(0)
	line := raw[:le]
	var crs int
	req.Method, crs = token(line, 0)
	req.Path, crs = token(line, crs)
	req.Protocol, _ = token(line, crs)

	if len(req.Method) == 0 {
		return errs.New(errs.MalformedRequest, "parse request line", errNoMethod)
	}
	if len(req.Path) == 0 {
		return errs.New(errs.MalformedRequest, "parse request line", errNoPath)
	}

	// headers, unknown ones are skipped
	crs = le + len(crlf)
	for crs < len(raw) {
		le = findeol(crs)
		line = raw[crs:le]
		crs = le + len(crlf)

		// blank line means that headers is over
		if len(line) == 0 {
			break
		}

		coloni := bytes.IndexByte(line, ':')
		if coloni == -1 {
			continue
		}
		key := line[:coloni]
		val := bytes.Trim(line[coloni+1:], " \t")

		switch {
		case bytes.EqualFold(key, contentTypeKey):
			if len(val) >= len(multipartPrefix) && bytes.EqualFold(val[:len(multipartPrefix)], multipartPrefix) {
				req.Boundary = unquote(val[len(multipartPrefix):])
			}
		case bytes.EqualFold(key, contentLengthKey):
			n, err := parseLength(val)
			if err != nil {
				return err
			}
			req.ContentLength = n
		}
	}

	return nil
}

// next space separated token in line from start, and position after it
func token(line []byte, start int) ([]byte, int) {
	for start < len(line) && line[start] == ' ' {
		start++
	}
	end := start
	for end < len(line) && line[end] != ' ' {
		end++
	}
	return line[start:end], end
}

// decimal digits only, anything else is a malformed request
func parseLength(val []byte) (int, error) {
	if len(val) == 0 {
		return 0, errs.New(errs.MalformedRequest, "parse Content-Length", errBadLength)
	}

	for _, c := range val {
		if c < '0' || c > '9' {
			return 0, errs.New(errs.MalformedRequest, "parse Content-Length", errBadLength)
		}
	}
	val = bytes.TrimLeft(val, "0")
	if len(val) > maxLengthDigits {
		return 0, errs.New(errs.RequestTooLarge, "parse Content-Length", nil)
	}

	n := 0
	for _, c := range val {
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func unquote(b []byte) []byte {
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		return b[1 : len(b)-1]
	}
	return b
}
