package engine

import (
	"io"

	"github.com/kfcemployee/bgserver/server/errs"
)

// func that builds resp by appending to dst, engine works only w bytes, no HTTP logic
type buildFunc func(dst []byte) []byte

// get buf from pool, build response into it, write it all and put it back
// so we don't alloc new bufs for every small resp
func WriteBuf(c Conn, cb buildFunc) error {
	out := bufPool.Get().([]byte)
	out = cb(out[:0])

	err := WriteAll(c, out)
	if cap(out) == initBufSize {
		bufPool.Put(out[:initBufSize])
	}
	return err
}

// write until b is sent, a short write with no error is io.ErrShortWrite
func WriteAll(c Conn, b []byte) error {
	for len(b) > 0 {
		n, err := c.Write(b)
		if err != nil {
			return errs.New(errs.IOFailure, "send", err)
		}
		if n <= 0 {
			return errs.New(errs.IOFailure, "send", io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}
