package kb

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrReentrantProve is returned by Prove when called from within a
// task already running on the knowledge base's own scheduler. Use the
// internal async proving path from inside a Prover or Listener handler
// instead.
var ErrReentrantProve = errors.New("kb: prove called reentrantly from within a scheduled task")

// ErrHypotheticalUnsupported is returned by Ponder for Hypothetically
// and for any mode value it does not recognize.
var ErrHypotheticalUnsupported = errors.New("kb: hypothetical ponder mode is not implemented")

// UnsafeOperationError reports a TOTALLY_UNSAFE listener invoked in a
// hypothetical context. Unreachable until hypothetical worlds exist;
// kept so the error taxonomy has a concrete type ready for it.
type UnsafeOperationError struct {
	Listener fmt.Stringer
}

func (e *UnsafeOperationError) Error() string {
	return fmt.Sprintf("kb: listener %s is TOTALLY_UNSAFE and cannot run in a hypothetical context", e.Listener)
}

// InvalidHandlerShapeError is returned by AddListener when a handler's
// registration does not match its declared argument mode.
type InvalidHandlerShapeError struct {
	Reason string
}

func (e *InvalidHandlerShapeError) Error() string {
	return "kb: invalid handler shape: " + e.Reason
}

// InvalidHandlerReturnError wraps a handler return value that is none
// of the accepted HandlerItem shapes. Unreachable while RawHandlerFunc
// and MapHandlerFunc keep their static []HandlerItem return type, which
// rules out an invalid shape at compile time; kept so the error
// taxonomy has a concrete type ready if a handler signature is ever
// loosened to accept a dynamically-shaped return.
type InvalidHandlerReturnError struct {
	Reason string
}

func (e *InvalidHandlerReturnError) Error() string {
	return "kb: invalid handler return: " + e.Reason
}

// HandlerException wraps a panic recovered from a user handler during
// ponder. It propagates out of the ponder result stream and terminates
// the overall query: a failing listener poisons the query.
type HandlerException struct {
	Listener fmt.Stringer
	Cause    interface{}
}

func (e *HandlerException) Error() string {
	return fmt.Sprintf("kb: handler for listener %s panicked: %v", e.Listener, e.Cause)
}

// StorageError wraps any error returned by the storage.Backend
// collaborator with the operation that triggered it.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return errors.Wrap(e.Cause, "kb: storage error during "+e.Op).Error()
}

func (e *StorageError) Unwrap() error { return e.Cause }

func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Cause: err}
}
