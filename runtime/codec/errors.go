package codec

import (
	"errors"
)

// Catch converts a recovered codec panic into an error. Panics that did not
// originate inside the codec are re-raised. Use as:
//
//	defer func() { err = codec.Catch(recover()) }()
func Catch(r any) error {
	if r == nil {
		return nil
	}

	err, ok := r.(error)
	if !ok {
		panic(r)
	}

	if errors.As(err, &serializerError{}) || errors.As(err, &deserializerError{}) {
		return err
	}

	panic(r)
}
