package cellar

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/zeebo/errs"
	"golang.org/x/exp/maps"

	"github.com/mizuchi-dev/cellar/internal/reflection"
)

// Process-wide registry of named cells. Cells are registered typed and
// looked up untyped; Narrow recovers the typed view on the way out.
var globalRegistry = registry{cells: map[string]*registration{}}

type registration struct {
	name string
	typ  reflect.Type // the cell's value type T
	cell any          // the *Cell[T]
}

type registry struct {
	mu    sync.Mutex
	cells map[string]*registration
}

// RegisterCell adds c under name. Registering a name twice fails;
// re-registering with a different value type fails with TypeMismatchError.
func RegisterCell[T any](name string, c *Cell[T]) error {
	return globalRegistry.register(&registration{
		name: name,
		typ:  reflection.Type[T](),
		cell: c,
	})
}

func (r *registry) register(reg *registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.cells[reg.name]; ok {
		if old.typ != reg.typ {
			return errs.Wrap(&TypeMismatchError{Want: old.typ, Got: reg.typ})
		}
		return fmt.Errorf("cell %q already registered", reg.name)
	}
	r.cells[reg.name] = reg

	return nil
}

// LookupCell returns the registered cell as an untyped option: present when
// name is registered, empty otherwise. Narrow[*Cell[T]] gets the typed cell
// back.
func LookupCell(name string) Option[any] {
	return globalRegistry.lookup(name)
}

func (r *registry) lookup(name string) Option[any] {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.cells[name]
	if !ok {
		return None[any]()
	}

	return Some[any](reg.cell)
}

// CellNames returns the registered cell names, sorted.
func CellNames() []string {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	names := maps.Keys(globalRegistry.cells)
	sort.Strings(names)

	return names
}
