// error kinds shared by engine, protocol and site packages
package errs

import "fmt"

// Kind is the category of a failure
type Kind int

const (
	MalformedRequest Kind = iota + 1
	MalformedMultipart
	FileNotFound
	RequestTooLarge
	IOFailure
)

func (k Kind) Error() string {
	switch k {
	case MalformedRequest:
		return "malformed request"
	case MalformedMultipart:
		return "malformed multipart body"
	case FileNotFound:
		return "file not found"
	case RequestTooLarge:
		return "request too large"
	case IOFailure:
		return "i/o failure"
	default:
		return fmt.Sprintf("unknown error kind: %d", int(k))
	}
}

// Error carries a kind, the operation that failed and an optional cause,
// errors.Is(err, errs.FileNotFound) matches on kind
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (underlying: %v)", e.Op, e.Kind.Error(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New wraps underlying (may be nil) into an *Error of kind k
func New(k Kind, op string, underlying error) *Error {
	return &Error{Kind: k, Op: op, Err: underlying}
}

// KindOf returns the kind of err, or 0 if err carries none
func KindOf(err error) Kind {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Kind
		case Kind:
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}
