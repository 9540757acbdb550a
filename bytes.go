package cellar

import "encoding/binary"

// IntToBytes encodes v as 4 big-endian bytes.
func IntToBytes(v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

// BytesToInt reads 4 big-endian bytes starting at off. It is the exact
// inverse of IntToBytes.
func BytesToInt(b []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(b[off : off+4]))
}
