package engine

import (
	"io"
	"sync/atomic"
	"syscall"

	"github.com/iceber/iouring-go"

	"github.com/kfcemployee/bgserver/server/errs"
)

// queue depth shared by all connections of one transport
const ringEntries = 64

// RingTransport reads and writes accepted sockets through one io_uring instance
type RingTransport struct {
	ring   *iouring.IOURing
	closed atomic.Bool
}

func NewRingTransport() (*RingTransport, error) {
	ring, err := iouring.New(ringEntries)
	if err != nil {
		return nil, errs.New(errs.IOFailure, "io_uring init", err)
	}
	return &RingTransport{ring: ring}, nil
}

func (t *RingTransport) Wrap(fd int) Conn {
	return &ringConn{ring: t.ring, fd: fd}
}

// ring field is never cleared, Wrap may still run on the accept goroutine
func (t *RingTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.ring.Close()
}

// Read and Write prep requests carry the fd resolver, so ReturnInt yields the byte count
type ringConn struct {
	ring   *iouring.IOURing
	fd     int
	closed atomic.Bool
}

func (c *ringConn) Read(p []byte) (int, error) {
	ch := make(chan iouring.Result, 1)
	if _, err := c.ring.SubmitRequest(iouring.Read(c.fd, p), ch); err != nil {
		return 0, err
	}

	result := <-ch
	n, err := result.ReturnInt()
	if err != nil {
		return 0, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (c *ringConn) Write(p []byte) (int, error) {
	ch := make(chan iouring.Result, 1)
	if _, err := c.ring.SubmitRequest(iouring.Write(c.fd, p), ch); err != nil {
		return 0, err
	}

	result := <-ch
	return result.ReturnInt()
}

func (c *ringConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return syscall.Close(c.fd)
}
