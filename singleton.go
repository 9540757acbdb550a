package cellar

import (
	"reflect"
	"sync"

	"github.com/mizuchi-dev/cellar/internal/reflection"
	"github.com/mizuchi-dev/cellar/internal/register"
)

// Singleton slots hold one write-once value per type, shared process-wide.
// They carry process defaults such as the open journal: set once during
// startup, read from anywhere. GetSingleton blocks until the value has
// been written.

var singletonMu sync.Mutex
var singletons = map[reflect.Type]*register.WriteOnce[any]{}

func getSingleton[T any]() *register.WriteOnce[any] {
	rt := reflection.Type[T]()

	singletonMu.Lock()
	defer singletonMu.Unlock()

	s, ok := singletons[rt]
	if !ok {
		s = &register.WriteOnce[any]{}
		singletons[rt] = s
	}

	return s
}

// SetSingleton writes the process-wide value for type T. Writing a type
// twice panics.
func SetSingleton[T any](val T) {
	s := getSingleton[T]()
	s.Write(val)
}

// TrySetSingleton writes the process-wide value for type T unless one has
// already been written. It reports whether the write took effect.
func TrySetSingleton[T any](val T) bool {
	s := getSingleton[T]()
	return s.TryWrite(val)
}

// GetSingleton reads the process-wide value for type T, blocking until it
// has been written.
func GetSingleton[T any]() T {
	s := getSingleton[T]()
	val := s.Read()

	return val.(T)
}
