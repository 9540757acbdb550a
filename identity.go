package cellar

import (
	"fmt"
	"reflect"
)

// IdentityHash returns a 32-bit hash derived from v's identity (the
// reference itself, never the referent's contents), stable for the
// referent's lifetime. v must be of a reference kind: pointer, map, chan,
// func, slice or unsafe pointer.
func IdentityHash(v any) uint32 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map,
		reflect.Chan, reflect.Func, reflect.Slice:
	default:
		panic(fmt.Sprintf("IdentityHash: %T is not a reference type", v))
	}
	return mix64(uint64(rv.Pointer()))
}

// IdentityCompare orders a and b by identity hash: the sign of the widened
// 64-bit difference of the two 32-bit hashes. The widening keeps the
// subtraction overflow-free, so the ordering is total (consistent,
// antisymmetric, transitive) and safe for sorted containers.
func IdentityCompare(a, b any) int {
	d := int64(IdentityHash(a)) - int64(IdentityHash(b))
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

// mix64 is the splitmix64 finalizer, folded to 32 bits.
func mix64(x uint64) uint32 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return uint32(x ^ x>>32)
}
