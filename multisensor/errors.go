package multisensor

import (
	"errors"
	"fmt"
)

// Kind classifies a failure: a bad configuration (fatal, reported before any
// hardware action), a bus transport error (isolated per device during
// sequencing), or a failed query on the sequenced collection.
type Kind string

const (
	KindConfig    Kind = "config"
	KindTransport Kind = "transport"
	KindQuery     Kind = "query"
)

// ErrBadIndex marks a query against a sensor index outside the collection.
// It is always wrapped in a KindQuery error.
var ErrBadIndex = errors.New("sensor index out of range")

// Error carries the failure kind, the operation that failed and the cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := string(e.Kind) + ": " + e.Op
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from an error, or "" for errors that did not
// originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

func configErrorf(op, format string, args ...any) error {
	return &Error{Kind: KindConfig, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func transportError(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func queryError(op string, err error) error {
	return &Error{Kind: KindQuery, Op: op, Err: err}
}
