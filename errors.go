package cellar

import (
	"errors"
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
)

// PanicError is the failure stored by a cell whose computation panicked
// instead of returning an error. Value is the recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Ignoring runs fn and swallows a failure of kind E: if fn returns an error
// matching E anywhere in its wrap chain, Ignoring returns nil. Any other
// failure propagates unchanged. Panics are not intercepted.
func Ignoring[E error](fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	var kind E
	if errors.As(err, &kind) {
		return nil
	}
	return err
}

// RootCause follows err's cause chain, through both Cause and Unwrap edges,
// and returns the innermost error.
func RootCause(err error) error {
	for err != nil {
		if cause := pkgerrors.Cause(err); cause != err {
			err = cause
			continue
		}
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

// PrintRootCauseOnError runs fn; if it fails, the root cause's diagnostic
// trace is printed to stderr and the original failure is returned
// unchanged. The printing never suppresses the failure.
func PrintRootCauseOnError(fn func() error) error {
	err := fn()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", RootCause(err))
	}
	return err
}
