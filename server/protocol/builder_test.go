package protocol

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strconv"
	"testing"
)

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		resp         *Response
		wantCode     int
		wantType     string
		wantBody     []byte
		wantLocation string
	}{
		{"ok html", OK("text/html", []byte("<h1>hi</h1>")), 200, "text/html", []byte("<h1>hi</h1>"), ""},
		{"ok binary", OK("image/jpeg", []byte{0xff, 0xd8, 0x00, '\r', '\n', 0xff, 0xd9}), 200, "image/jpeg", []byte{0xff, 0xd8, 0x00, '\r', '\n', 0xff, 0xd9}, ""},
		{"ok empty", OK("text/plain", nil), 200, "text/plain", []byte{}, ""},
		{"not found", NotFound("text/html", []byte("nope")), 404, "text/html", []byte("nope"), ""},
		{"see other", SeeOther("/index.html"), 303, "", []byte{}, "/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.resp.AppendTo(nil)

			res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
			if err != nil {
				t.Fatalf("reference client failed: %v", err)
			}
			defer res.Body.Close()

			body, err := io.ReadAll(res.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if res.StatusCode != tt.wantCode {
				t.Errorf("status %d, want %d", res.StatusCode, tt.wantCode)
			}
			if got := res.Header.Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type %q, want %q", got, tt.wantType)
			}
			if got := res.Header.Get("Location"); got != tt.wantLocation {
				t.Errorf("Location %q, want %q", got, tt.wantLocation)
			}
			if !bytes.Equal(body, tt.wantBody) {
				t.Errorf("body %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestResponseExactBytes(t *testing.T) {
	got := string(SeeOther("/index.html").AppendTo(nil))
	want := "HTTP/1.1 303 See Other\r\nLocation: /index.html\r\n\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = string(OK("text/css", []byte("a{}")).AppendTo(nil))
	want = "HTTP/1.1 200 OK\r\nContent-Type: text/css\r\nContent-Length: 3\r\n\r\na{}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStatusUnknownCode(t *testing.T) {
	for _, code := range []int{0, 99, 201, 600} {
		if got := string(Status(code)); got != "500 Internal Server Error" {
			t.Errorf("Status(%d) = %q", code, got)
		}
	}
}

func TestAppendUint(t *testing.T) {
	for _, n := range []uint{0, 7, 10, 1200000, 4294967296} {
		got := string(AppendUint([]byte("x"), n))
		want := "x" + strconv.FormatUint(uint64(n), 10)
		if got != want {
			t.Errorf("AppendUint(%d) = %q, want %q", n, got, want)
		}
	}
}

func BenchmarkAppendTo(b *testing.B) {
	resp := OK("text/html", []byte("<html><body>hello world</body></html>"))
	dst := make([]byte, 0, 1024)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		_ = resp.AppendTo(dst[:0])
	}
}
