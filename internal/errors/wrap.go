package errors

import (
	"errors"
	"fmt"
)

// OpError tags a failure with the module and operation that produced it,
// so logs and Sentry events can group by where a request broke.
type OpError struct {
	Module string // e.g. "webhook", "catalog"
	Op     string // e.g. "reply", "load"
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("[%s:%s] %v", e.Module, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Wrap tags err with module and op. Returns nil if err is nil.
func Wrap(module, op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Module: module, Op: op, Err: err}
}

// Operation returns "module:op" for the outermost OpError in err's chain,
// or "" when there is none.
func Operation(err error) string {
	var op *OpError
	if errors.As(err, &op) {
		return op.Module + ":" + op.Op
	}
	return ""
}
