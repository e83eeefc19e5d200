// listening socket and accept loop
// only low level socket functional, no HTTP logic here
package engine

import (
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/kfcemployee/bgserver/server/errs"
)

const (
	DefaultBacklog = 10 // backlog for listening

	acceptBackoff = 10 * time.Millisecond
)

// Listener is a blocking IPv4 listening socket
type Listener struct {
	fd     int
	addr   [4]byte
	port   int
	closed atomic.Bool
}

// create new socket, bind and start listening;
// port 0 picks a free port, see Port()
func Listen(addr [4]byte, port, backlog int) (*Listener, error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	// SOCK_STREAM = TCP
	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_STREAM, syscall.IPPROTO_TCP)
	if err != nil {
		return nil, errs.New(errs.IOFailure, "socket", err)
	}
	syscall.CloseOnExec(fd)

	fail := func(op string, err error) (*Listener, error) {
		syscall.Close(fd)
		return nil, errs.New(errs.IOFailure, op, err)
	}

	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
		return fail("setsockopt(SO_REUSEADDR)", err)
	}
	if err := syscall.Bind(fd, &syscall.SockaddrInet4{ // bind socket to addr:port
		Port: port,
		Addr: addr,
	}); err != nil {
		return fail("bind", err)
	}
	if err := syscall.Listen(fd, backlog); err != nil { // start listening on addr:port
		return fail("listen", err)
	}

	sa, err := syscall.Getsockname(fd)
	if err != nil {
		return fail("getsockname", err)
	}
	if in4, ok := sa.(*syscall.SockaddrInet4); ok {
		port = in4.Port
	}

	return &Listener{fd: fd, addr: addr, port: port}, nil
}

func (l *Listener) Port() int {
	return l.port
}

// host:port the socket is bound to
func (l *Listener) Addr() string {
	return net.JoinHostPort(net.IP(l.addr[:]).String(), strconv.Itoa(l.port))
}

// blocks until a client connects, returns its descriptor
func (l *Listener) Accept() (int, error) {
	for {
		nfd, _, err := syscall.Accept(l.fd)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return -1, err
		}
		syscall.CloseOnExec(nfd)
		return nfd, nil
	}
}

// shutdown wakes a blocked Accept, so Serve returns nil
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	syscall.Shutdown(l.fd, syscall.SHUT_RDWR)
	if err := syscall.Close(l.fd); err != nil {
		return errs.New(errs.IOFailure, "close listener", err)
	}
	return nil
}

// callback for one accepted connection, it owns the Conn and must close it
type ConnFunc func(c Conn)

// accept loop: every connection runs in its own goroutine,
// a panic there is recovered so the loop keeps accepting
func Serve(l *Listener, t Transport, log *slog.Logger, cb ConnFunc) error {
	for {
		nfd, err := l.Accept()
		if err != nil {
			if l.closed.Load() {
				return nil
			}
			if temporary(err) {
				log.Warn("accept failed", "err", err)
				time.Sleep(acceptBackoff)
				continue
			}
			return errs.New(errs.IOFailure, "accept", err)
		}

		c := t.Wrap(nfd)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("connection handler panicked", "panic", r)
					c.Close()
				}
			}()
			cb(c)
		}()
	}
}

func temporary(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case syscall.ECONNABORTED, syscall.EMFILE, syscall.ENFILE, syscall.ENOBUFS,
		syscall.ENOMEM, syscall.EAGAIN, syscall.EPROTO, syscall.EPERM:
		return true
	}
	return false
}
