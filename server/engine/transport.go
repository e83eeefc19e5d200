package engine

import (
	"io"
	"sync/atomic"
	"syscall"
)

// Conn is one accepted client connection
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Transport turns an accepted descriptor into a Conn
type Transport interface {
	Wrap(fd int) Conn
	Close() error
}

// SyscallTransport does plain blocking read(2)/write(2) on the descriptor
type SyscallTransport struct{}

func (SyscallTransport) Wrap(fd int) Conn {
	return &fdConn{fd: fd}
}

func (SyscallTransport) Close() error {
	return nil
}

type fdConn struct {
	fd     int
	closed atomic.Bool
}

func (c *fdConn) Read(p []byte) (int, error) {
	for {
		n, err := syscall.Read(c.fd, p)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *fdConn) Write(p []byte) (int, error) {
	for {
		n, err := syscall.Write(c.fd, p)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

// closing twice is a no-op, the descriptor may already belong to someone else
func (c *fdConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return syscall.Close(c.fd)
}
