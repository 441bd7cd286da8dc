package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatch          = errors.New("no close match found")
	ErrEmptyQuery       = errors.New("empty query")
	ErrMissingColumn    = errors.New("missing column")
	ErrEmptyCatalog     = errors.New("catalog has no rows")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrSnapshotMismatch = errors.New("snapshot does not match catalog")
)

type Error struct {
	Op      string
	Err     error
	Context map[string]any
}

func (e *Error) Error() string {
	if len(e.Context) > 0 {
		return fmt.Sprintf("%s %v: %v", e.Op, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

func WithContext(err *Error, key string, val any) *Error {
	if err.Context == nil {
		err.Context = make(map[string]any)
	}
	err.Context[key] = val
	return err
}
