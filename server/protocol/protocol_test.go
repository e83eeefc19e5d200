package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/kfcemployee/bgserver/server/engine"
	"github.com/kfcemployee/bgserver/server/errs"
)

// read-only conn over any reader
type readerConn struct {
	r io.Reader
}

func (c readerConn) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c readerConn) Write(p []byte) (int, error) { return len(p), nil }
func (c readerConn) Close() error                { return nil }

func receive(p *HTTPParser, raw string, oneByte bool, max int) (*engine.Session, *Request, error) {
	var r io.Reader = strings.NewReader(raw)
	if oneByte {
		r = iotest.OneByteReader(r)
	}

	s := engine.AcquireSession(max)
	req := &Request{}
	err := s.Fill(readerConn{r}, func(s *engine.Session) (bool, error) {
		return p.Feed(s, req)
	})
	return s, req, err
}

func Test_parser_all_cases(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		maxHead      int
		expectKind   errs.Kind
		checkRequest func(t *testing.T, req *Request)
	}{
		{
			name: "valid get request",
			raw:  "GET /index.html HTTP/1.1\r\nHost: localhost\r\nUser-Agent: test\r\n\r\n",
			checkRequest: func(t *testing.T, req *Request) {
				if !bytes.Equal(req.Method, []byte("GET")) {
					t.Error("wrong method")
				}
				if !bytes.Equal(req.Path, []byte("/index.html")) {
					t.Error("wrong path")
				}
				if !bytes.Equal(req.Protocol, []byte("HTTP/1.1")) {
					t.Error("wrong protocol")
				}
				if len(req.Body) != 0 || req.ContentLength != 0 {
					t.Errorf("expected empty body, got %q (%d)", req.Body, req.ContentLength)
				}
			},
		},
		{
			name: "multipart post with body",
			raw: "POST /upload_bg HTTP/1.1\r\n" +
				"Content-Type: multipart/form-data; boundary=XYZ\r\n" +
				"Content-Length: 11\r\n\r\nhello world",
			checkRequest: func(t *testing.T, req *Request) {
				if !req.IsMethod("POST") {
					t.Error("wrong method")
				}
				if string(req.Boundary) != "XYZ" {
					t.Errorf("wrong boundary %q", req.Boundary)
				}
				if req.ContentLength != 11 || string(req.Body) != "hello world" {
					t.Errorf("wrong body %q (%d)", req.Body, req.ContentLength)
				}
			},
		},
		{
			name: "header names are case-insensitive",
			raw:  "POST /x HTTP/1.1\r\ncontent-length: 5\r\ncontent-type: multipart/form-data; boundary=\"q\"\r\n\r\nabcde",
			checkRequest: func(t *testing.T, req *Request) {
				if string(req.Body) != "abcde" {
					t.Errorf("wrong body %q", req.Body)
				}
				if string(req.Boundary) != "q" {
					t.Errorf("wrong boundary %q", req.Boundary)
				}
			},
		},
		{
			name: "other content type has no boundary",
			raw:  "POST /x HTTP/1.1\r\nContent-Type: text/plain\r\nContent-Length: 2\r\n\r\nhi",
			checkRequest: func(t *testing.T, req *Request) {
				if req.Boundary != nil {
					t.Errorf("unexpected boundary %q", req.Boundary)
				}
			},
		},
		{
			name: "bytes after declared body are ignored",
			raw:  "POST /x HTTP/1.1\r\nContent-Length: 3\r\n\r\nabcdef",
			checkRequest: func(t *testing.T, req *Request) {
				if string(req.Body) != "abc" {
					t.Errorf("wrong body %q", req.Body)
				}
			},
		},
		{
			name: "request line without protocol",
			raw:  "GET /\r\nNoColonHeader\r\n\r\n",
			checkRequest: func(t *testing.T, req *Request) {
				if string(req.Path) != "/" || len(req.Protocol) != 0 {
					t.Errorf("wrong request line %q %q", req.Path, req.Protocol)
				}
			},
		},
		{
			name:       "missing path",
			raw:        "GET\r\nHost: localhost\r\n\r\n",
			expectKind: errs.MalformedRequest,
		},
		{
			name:       "empty request line",
			raw:        "\r\n\r\n",
			expectKind: errs.MalformedRequest,
		},
		{
			name:       "non-numeric content length",
			raw:        "POST / HTTP/1.1\r\nContent-Length: 12abc\r\n\r\n",
			expectKind: errs.MalformedRequest,
		},
		{
			name:       "declared body over the limit",
			raw:        "POST / HTTP/1.1\r\nContent-Length: 99999999\r\n\r\n",
			expectKind: errs.RequestTooLarge,
		},
		{
			name:       "absurd content length",
			raw:        "POST / HTTP/1.1\r\nContent-Length: 9999999999999999999999\r\n\r\n",
			expectKind: errs.RequestTooLarge,
		},
		{
			name:       "head over the limit",
			raw:        "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 100) + "\r\n\r\n",
			maxHead:    64,
			expectKind: errs.RequestTooLarge,
		},
		{
			name:       "body incomplete",
			raw:        "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\nsmall body",
			expectKind: errs.IOFailure,
		},
	}

	for _, tt := range tests {
		for _, oneByte := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/one_byte=%v", tt.name, oneByte), func(t *testing.T) {
				p := &HTTPParser{MaxHead: tt.maxHead}
				s, req, err := receive(p, tt.raw, oneByte, 1200000)
				defer engine.ReleaseSession(s)

				if tt.expectKind != 0 {
					if !errors.Is(err, tt.expectKind) {
						t.Fatalf("expected error %v, got %v", tt.expectKind, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				tt.checkRequest(t, req)
			})
		}
	}
}

func TestFeedWaitsForDeclaredBody(t *testing.T) {
	head := "POST /upload_bg HTTP/1.1\r\nContent-Length: 4\r\n\r\n"
	p := &HTTPParser{}
	s := engine.AcquireSession(1024)
	defer engine.ReleaseSession(s)
	req := &Request{}

	for i, part := range []string{head[:10], head[10:], "ab", "c", "d"} {
		s.Offset += copy(s.Buf[s.Offset:], part)
		done, err := p.Feed(s, req)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if done != (i == 4) {
			t.Fatalf("step %d: done = %v", i, done)
		}
	}
	if string(req.Body) != "abcd" {
		t.Errorf("wrong body %q", req.Body)
	}
}

func TestParseHeadNoBody(t *testing.T) {
	req := &Request{}
	if err := ParseHead([]byte("DELETE /a/b HTTP/1.1\r\n\r\n"), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(req.Method) != "DELETE" || string(req.Path) != "/a/b" || req.ContentLength != 0 {
		t.Errorf("unexpected request %+v", req)
	}
}

func BenchmarkParseHead(b *testing.B) {
	raw := []byte("POST /upload_bg HTTP/1.1\r\n" +
		"Host: localhost:8080\r\n" +
		"User-Agent: bgserver-benchmark\r\n" +
		"Content-Type: multipart/form-data; boundary=----WebKitFormBoundary7MA4YWxkTrZu0gW\r\n" +
		"Content-Length: 18\r\n" +
		"\r\n")
	req := &Request{}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if err := ParseHead(raw, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFeedHeavy(b *testing.B) {
	headers := ""
	for i := range 20 {
		headers += fmt.Sprintf("X-Header-%d: value-%d-extra-long-data-for-stress-test\r\n", i, i)
	}
	body := bytes.Repeat([]byte{'a'}, 1024)

	raw := []byte(fmt.Sprintf("POST /upload_bg HTTP/1.1\r\n"+
		"Host: localhost\r\n"+
		"Content-Length: %d\r\n"+
		"%s\r\n%s", len(body), headers, body))

	p := &HTTPParser{}
	s := &engine.Session{Buf: make([]byte, 4096), Max: 4096}
	req := &Request{}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		s.Offset = copy(s.Buf, raw)
		s.Scan, s.Head, s.Need = 0, 0, 0

		done, err := p.Feed(s, req)
		if err != nil || !done {
			b.Fatal(done, err)
		}
	}
}
