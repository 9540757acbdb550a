package pool

import (
	"fmt"
	"testing"
)

func TestPowerOfTwoSizeBytes(t *testing.T) {
	bs, err := GetPowerOfTwoSizeBytes(100)
	if err != nil {
		t.Error(err)
		return
	}

	const s = "hello world, so beautiful"

	*bs = append(*bs, []byte(s)...)
	want := fmt.Sprintf("%p", *bs)
	if err := FreePowerOfTwoSizeBytes(*bs); err != nil {
		t.Error(err)
		return
	}

	// A same-size-class Get should hand the freed buffer back.
	bs, err = GetPowerOfTwoSizeBytes(111)
	if err != nil {
		t.Error(err)
		return
	}

	actual := fmt.Sprintf("%p", *bs)

	if want != actual {
		t.Errorf("want %s, actual: %s", want, actual)
	}
}

func TestPowerOfTwoSizeBytesZero(t *testing.T) {
	bs, err := GetPowerOfTwoSizeBytes(0)
	if err != nil {
		t.Error(err)
	}
	if bs != nil {
		t.Errorf("got %v, want nil", bs)
	}
	if err := FreePowerOfTwoSizeBytes(nil); err != nil {
		t.Error(err)
	}
}
