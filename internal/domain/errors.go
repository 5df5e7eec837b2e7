package domain

import (
	"errors"
	"fmt"

	"example.com/fitness/internal/query"
)

// Kind classifies a failure so transports can map it without inspecting
// messages.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

var (
	// ErrValidation matches every validation failure via errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound matches every missing-record failure via errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrStore matches every store failure via errors.Is.
	ErrStore = errors.New("store unavailable")
)

// Error is the tagged error returned by Service operations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	case e.Op == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) and friends match on kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindStore:
		return ErrStore
	default:
		return nil
	}
}

// ValidationError wraps err as a validation failure of op.
func ValidationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// NotFoundError reports that the record addressed by op does not exist.
func NotFoundError(op string, what string) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("%s %w", what, ErrNotFound)}
}

// StoreError wraps a failure of the underlying store. Errors that already
// carry a kind are returned unchanged.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// KindOf reports the kind of err. Query validation errors count as
// validation failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	var verr *query.ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	return KindUnknown
}
