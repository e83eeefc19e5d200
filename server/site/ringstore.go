package site

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/godzie44/go-uring/uring"

	"github.com/kfcemployee/bgserver/server/errs"
)

const ringEntries = 32

// RingStore is a Store doing file reads and writes through io_uring.
// One ring serves all connections, submissions are serialized by mu
type RingStore struct {
	Root string

	mu   sync.Mutex
	ring *uring.Ring
}

func NewRingStore(root string) (*RingStore, error) {
	ring, err := uring.New(ringEntries)
	if err != nil {
		return nil, errs.New(errs.IOFailure, "io_uring init", err)
	}
	return &RingStore{Root: root, ring: ring}, nil
}

func (s *RingStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ring != nil {
		s.ring.Close()
		s.ring = nil
	}
	return nil
}

func (s *RingStore) path(name string) string {
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// queue one op, submit and wait for its completion
func (s *RingStore) run(queue func(r *uring.Ring) error) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ring == nil {
		return 0, os.ErrClosed
	}
	if err := queue(s.ring); err != nil {
		return 0, err
	}
	if _, err := s.ring.Submit(); err != nil {
		return 0, err
	}

	cqe, err := s.ring.WaitCQEvents(1)
	if err != nil {
		return 0, err
	}
	defer s.ring.SeenCQE(cqe)

	if err := cqe.Error(); err != nil {
		return 0, err
	}
	return int(cqe.Res), nil
}

func (s *RingStore) ReadFile(name string) ([]byte, error) {
	notFound := func(err error) ([]byte, error) {
		return nil, errs.New(errs.FileNotFound, "read "+name, err)
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		return notFound(err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return notFound(err)
	}
	if st.IsDir() {
		return notFound(os.ErrInvalid)
	}

	buf := make([]byte, st.Size())
	off := 0
	for off < len(buf) {
		n, err := s.run(func(r *uring.Ring) error {
			return r.QueueSQE(uring.Read(f.Fd(), buf[off:], uint64(off)), 0, 0)
		})
		if err != nil {
			return nil, errs.New(errs.IOFailure, "read "+name, err)
		}
		if n == 0 {
			break // file shrank since stat
		}
		off += n
	}
	return buf[:off], nil
}

func (s *RingStore) WriteFile(name string, data []byte) error {
	f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.New(errs.IOFailure, "write "+name, err)
	}
	defer f.Close()

	off := 0
	for off < len(data) {
		n, err := s.run(func(r *uring.Ring) error {
			return r.QueueSQE(uring.Write(f.Fd(), data[off:], uint64(off)), 0, 0)
		})
		if err != nil {
			return errs.New(errs.IOFailure, "write "+name, err)
		}
		if n <= 0 {
			return errs.New(errs.IOFailure, "write "+name, io.ErrShortWrite)
		}
		off += n
	}
	return nil
}
