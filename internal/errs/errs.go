// Package errs defines the engine's error kinds. Keeping these sentinel
// types in one package, instead of scattering bare errors.New calls through
// engine/store/multiverse, lets callers errors.Is/errors.As without coupling
// to engine internals -- the same discipline go-420coin's ethash engine
// uses to keep its own error messages private to the consensus package.
package errs

import "errors"

// Kind classifies an engine error for callers deciding whether to retry,
// log-and-swallow, or treat it as fatal.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindWorker
	KindProtocol
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindPersistence:
		return "persistence"
	case KindValidation:
		return "validation"
	case KindWorker:
		return "worker"
	case KindProtocol:
		return "protocol"
	default:
		return "fatal"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch on it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Op
	}
	return e.Kind.String() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

var (
	// ErrNotFound is returned by store implementations for a missing key.
	ErrNotFound = errors.New("key not found")
)
