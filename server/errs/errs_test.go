package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIsKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same kind", New(MalformedMultipart, "extract", nil), MalformedMultipart, true},
		{"other kind", New(MalformedMultipart, "extract", nil), MalformedRequest, false},
		{"wrapped", fmt.Errorf("upload: %w", New(FileNotFound, "open", nil)), FileNotFound, true},
		{"underlying", New(IOFailure, "read", io.ErrUnexpectedEOF), io.ErrUnexpectedEOF, true},
		{"bare kind", RequestTooLarge, RequestTooLarge, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("conn: %w", New(RequestTooLarge, "receive", nil))
	if k := KindOf(wrapped); k != RequestTooLarge {
		t.Errorf("KindOf() = %v, want %v", k, RequestTooLarge)
	}
	if k := KindOf(io.EOF); k != 0 {
		t.Errorf("KindOf(io.EOF) = %d, want 0", k)
	}
	if k := KindOf(nil); k != 0 {
		t.Errorf("KindOf(nil) = %d, want 0", k)
	}
}

func TestErrorMessage(t *testing.T) {
	e := New(IOFailure, "write bg.jpg", io.ErrShortWrite)
	want := "write bg.jpg: i/o failure (underlying: short write)"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if Kind(42).Error() != "unknown error kind: 42" {
		t.Errorf("unexpected message for unknown kind: %q", Kind(42).Error())
	}
}
