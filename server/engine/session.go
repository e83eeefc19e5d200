// session management and receive loop
package engine

import (
	"errors"
	"io"
	"sync"

	"github.com/kfcemployee/bgserver/server/errs"
)

const (
	initBufSize = 1 << 16
)

// session is an arena for one connection's raw bytes,
// it belongs to exactly one handler and never crosses connections
type Session struct {
	Buf    []byte // grows up to Max, request views refer to it
	Offset int    // bytes received

	// parser progress, so already seen bytes are not scanned again
	Scan int // head terminator search resumes here
	Head int // head length incl. blank line, 0 while unknown
	Need int // head + body length, 0 while unknown

	Max int // max message size
}

// reset session for put it to pool
func (s *Session) reset() {
	s.Buf = nil
	s.Offset = 0
	s.Scan = 0
	s.Head = 0
	s.Need = 0
	s.Max = 0
}

// pool for sessions
var (
	// bufPool for initial session buffers
	bufPool = sync.Pool{
		New: func() any {
			return make([]byte, initBufSize)
		},
	}

	sessionPool = sync.Pool{
		New: func() any {
			return &Session{}
		},
	}
)

// get session from pool with a buffer of at most max bytes
func AcquireSession(max int) *Session {
	s := sessionPool.Get().(*Session)
	s.reset()
	s.Max = max

	buf := bufPool.Get().([]byte)
	s.Buf = buf[:min(initBufSize, max)]
	return s
}

// put session and its buffer back;
// a grown buffer is left to GC, request views may still point to the old one
func ReleaseSession(s *Session) {
	if cap(s.Buf) == initBufSize {
		bufPool.Put(s.Buf[:initBufSize])
	}
	s.reset()
	sessionPool.Put(s)
}

// callback that inspects received bytes,
// it reports true when the session holds a whole message
type ParseFunc func(s *Session) (bool, error)

// read from c until parse reports a whole message or Max bytes are buffered
func (s *Session) Fill(c Conn, parse ParseFunc) error {
	for {
		if s.Offset == len(s.Buf) || s.Need > len(s.Buf) {
			if !s.grow() {
				return errs.New(errs.RequestTooLarge, "receive", nil)
			}
		}

		n, err := c.Read(s.Buf[s.Offset:])
		if n > 0 {
			s.Offset += n

			done, perr := parse(s)
			if perr != nil {
				return perr
			}
			if done {
				return nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return errs.New(errs.IOFailure, "receive", err)
		}
	}
}

// bytes already received are copied, never moved in place,
// so views taken into the old buffer stay valid
func (s *Session) grow() bool {
	size := len(s.Buf)
	if size >= s.Max {
		return false
	}

	target := max(size*2, s.Need)
	target = min(target, s.Max)
	if target <= s.Offset {
		return false
	}

	buf := make([]byte, target)
	copy(buf, s.Buf[:s.Offset])
	s.Buf = buf
	return true
}
