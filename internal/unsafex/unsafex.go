package unsafex

import "unsafe"

// StringToBytes returns a byte view of s without copying. The caller must
// not mutate the result.
func StringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// BytesToString returns a string view of b without copying. The caller
// must not mutate b while the string is live.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}
