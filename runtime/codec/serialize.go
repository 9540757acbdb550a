package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/protobuf/proto"

	"github.com/mizuchi-dev/cellar/internal/umath"
	"github.com/mizuchi-dev/cellar/internal/unsafex"
	"github.com/mizuchi-dev/cellar/runtime/pool"
)

type serializerError struct {
	err error
}

func (e serializerError) Error() string {
	if e.err == nil {
		return "serializer:"
	}

	return "serializer:" + e.err.Error()
}

func makeSerializerError(format string, args ...interface{}) serializerError {
	return serializerError{err: fmt.Errorf(format, args...)}
}

// Serializer appends values to a growable buffer. All fixed-width values
// are big-endian. Encoding failures panic with a serializerError; recover
// them with Catch.
type Serializer struct {
	buf []byte
}

func NewSerializer(size ...int) *Serializer {
	n := 128
	if len(size) > 0 {
		n = umath.FindNearestPow2(size[0])
	}

	bs, err := pool.GetPowerOfTwoSizeBytes(n)
	if err != nil || bs == nil {
		s := make([]byte, 0, n)
		bs = &s
	}

	return &Serializer{buf: (*bs)[:0]}
}

// Release returns the buffer to the pool. The slice returned by Data is
// invalid afterwards.
func (s *Serializer) Release() {
	_ = pool.FreePowerOfTwoSizeBytes(s.buf)
	s.buf = nil
}

func (s *Serializer) grow(bytesNeeded int) {
	l := len(s.buf)
	c := cap(s.buf)

	if l+bytesNeeded <= c {
		return
	}

	newSize := umath.FindNearestPow2(c + 1)
	for newSize < l+bytesNeeded {
		newSize *= 2
	}

	bs, err := pool.GetPowerOfTwoSizeBytes(newSize)
	if err != nil || bs == nil {
		buf := make([]byte, 0, newSize)
		bs = &buf
	}

	buf := append((*bs)[:0], s.buf...)
	_ = pool.FreePowerOfTwoSizeBytes(s.buf)
	s.buf = buf
}

func (s *Serializer) Uint64(val uint64) {
	s.grow(8)
	s.buf = binary.BigEndian.AppendUint64(s.buf, val)
}

func (s *Serializer) Uint32(val uint32) {
	s.grow(4)
	s.buf = binary.BigEndian.AppendUint32(s.buf, val)
}

func (s *Serializer) Uint16(val uint16) {
	s.grow(2)
	s.buf = binary.BigEndian.AppendUint16(s.buf, val)
}

func (s *Serializer) Uint8(val uint8) {
	s.grow(1)
	s.buf = append(s.buf, val)
}

func (s *Serializer) Uint(val uint) {
	s.Uint64(uint64(val))
}

func (s *Serializer) Int(val int) {
	s.Uint64(uint64(val))
}

func (s *Serializer) Int64(val int64) {
	s.Uint64(uint64(val))
}

func (s *Serializer) Int32(val int32) {
	s.Uint32(uint32(val))
}

func (s *Serializer) Int16(val int16) {
	s.Uint16(uint16(val))
}

func (s *Serializer) Int8(val int8) {
	s.Uint8(uint8(val))
}

func (s *Serializer) Byte(val byte) {
	s.grow(1)
	s.buf = append(s.buf, val)
}

func (s *Serializer) String(val string) {
	n := len(val)
	if n > math.MaxInt32 {
		panic(makeSerializerError("unable to encode string; length doesn't fit in 4 bytes"))
	}
	s.Uint32(uint32(n))
	if n == 0 {
		return
	}
	s.grow(n)
	s.buf = append(s.buf, unsafex.StringToBytes(val)...)
}

func (s *Serializer) MarshalProto(value proto.Message) {
	bs, err := proto.Marshal(value)
	if err != nil {
		panic(makeSerializerError("error encoding to proto %T: %w", value, err))
	}
	s.Bytes(bs)
}

func (s *Serializer) Bytes(val []byte) {
	if val == nil {
		s.Int32(-1)
		return
	}
	n := len(val)
	if n > math.MaxInt32 {
		panic(makeSerializerError("unable to encode bytes; length doesn't fit in 4 bytes"))
	}
	s.Uint32(uint32(n))
	if n == 0 {
		return
	}
	s.grow(n)
	s.buf = append(s.buf, val...)
}

func (s *Serializer) Bool(b bool) {
	if b {
		s.Uint8(1)
	} else {
		s.Uint8(0)
	}
}

func (s *Serializer) Float32(val float32) {
	s.Uint32(math.Float32bits(val))
}

func (s *Serializer) Float64(val float64) {
	s.Uint64(math.Float64bits(val))
}

func (s *Serializer) Data() []byte {
	return s.buf
}

const (
	endOfErrors   uint8 = 0
	chainedError  uint8 = 1
	terminalError uint8 = 2
)

// Error encodes err's wrap chain as a sequence of messages, outermost
// first. The chain is rebuilt as opaque errors on decode; error identity
// does not survive the trip, messages do.
func (s *Serializer) Error(err error) {
	for err != nil {
		next := unwrapOne(err)
		if next == nil {
			s.Uint8(terminalError)
			s.String(err.Error())
			break
		}
		s.Uint8(chainedError)
		s.String(err.Error())
		err = next
	}
	s.Uint8(endOfErrors)
}

func unwrapOne(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return nil
}

func (s *Serializer) Len(l int) {
	if l < -1 {
		panic(makeSerializerError("unable to encode a negative length %d", l))
	}
	if l > math.MaxInt32 {
		panic(makeSerializerError("length can't be represented in 4 bytes"))
	}

	s.Int32(int32(l))
}
