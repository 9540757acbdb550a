package cellar

import (
	"errors"
	"testing"
)

func TestRegisterAndLookupCell(t *testing.T) {
	cell := NewCell(10)
	if err := RegisterCell("registry-test/limit", cell); err != nil {
		t.Fatal(err)
	}

	opt := LookupCell("registry-test/limit")
	typed, err := Narrow[*Cell[int]](&opt)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := typed.Get()
	if !ok || got != cell {
		t.Fatalf("lookup returned (%v, %t), want the registered cell", got, ok)
	}
	if v, _ := got.Get(); v != 10 {
		t.Errorf("cell value: got %d, want 10", v)
	}
}

func TestLookupUnknownCell(t *testing.T) {
	if opt := LookupCell("registry-test/unknown"); opt.Ok() {
		t.Error("lookup of an unknown name should be empty")
	}
}

func TestReRegisterCell(t *testing.T) {
	if err := RegisterCell("registry-test/dup", NewCell(1)); err != nil {
		t.Fatal(err)
	}

	// Same name, same type: plain duplicate error.
	if err := RegisterCell("registry-test/dup", NewCell(2)); err == nil {
		t.Error("duplicate registration should fail")
	}

	// Same name, different type: a type mismatch.
	err := RegisterCell("registry-test/dup", NewCell("x"))
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("got %v, want a TypeMismatchError", err)
	}
}

func TestCellNamesSorted(t *testing.T) {
	if err := RegisterCell("registry-test/b", NewCell(1)); err != nil {
		t.Fatal(err)
	}
	if err := RegisterCell("registry-test/a", NewCell(1)); err != nil {
		t.Fatal(err)
	}

	names := CellNames()
	var prev string
	for _, name := range names {
		if name < prev {
			t.Fatalf("names not sorted: %v", names)
		}
		prev = name
	}
}

func TestSingleton(t *testing.T) {
	type marker struct{ n int }

	SetSingleton(&marker{n: 7})
	if got := GetSingleton[*marker](); got.n != 7 {
		t.Errorf("got %d, want 7", got.n)
	}

	if TrySetSingleton(&marker{n: 8}) {
		t.Error("second write should not take effect")
	}
	if got := GetSingleton[*marker](); got.n != 7 {
		t.Errorf("got %d, want the first value 7", got.n)
	}
}
