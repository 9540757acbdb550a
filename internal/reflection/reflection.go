package reflection

import "reflect"

// Type returns the reflect.Type of T. Unlike reflect.TypeOf it also works
// when T is an interface type.
func Type[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
