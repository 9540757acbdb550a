package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/proto"

	"github.com/mizuchi-dev/cellar/internal/unsafex"
)

type deserializerError struct {
	err error
}

func (e deserializerError) Error() string {
	if e.err == nil {
		return "deserializer:"
	}

	return "deserializer:" + e.err.Error()
}

func makeDeserializerError(format string, args ...interface{}) deserializerError {
	return deserializerError{err: fmt.Errorf(format, args...)}
}

// Deserializer reads values appended by a Serializer, in the same order.
// Decoding failures panic with a deserializerError; recover them with
// Catch.
type Deserializer struct {
	buf   []byte
	index int
}

func NewDeserializer(buf []byte) *Deserializer {
	return &Deserializer{buf: buf}
}

func (d *Deserializer) check(n int) {
	if len(d.buf[d.index:]) < n {
		panic(makeDeserializerError("not enough space to deserialize"))
	}
}

// Error decodes an error chain written by Serializer.Error. The innermost
// message becomes the root of the rebuilt chain.
func (d *Deserializer) Error() error {
	var msgs []string
	for {
		tag := d.Uint8()
		if tag == endOfErrors {
			break
		}
		if tag != chainedError && tag != terminalError {
			panic(makeDeserializerError("unknown error tag %d", tag))
		}
		msgs = append(msgs, d.String())
	}

	if len(msgs) == 0 {
		return nil
	}

	err := errors.New(msgs[len(msgs)-1])
	for i := len(msgs) - 2; i >= 0; i-- {
		err = fmt.Errorf("%s: %w", strip(msgs[i], msgs[i+1]), err)
	}

	return err
}

// strip drops the wrapped error's message from the tail of a wrapping
// message, so rebuilding the chain doesn't duplicate it.
func strip(msg, inner string) string {
	if n := len(msg) - len(inner) - len(": "); n > 0 && msg[n:] == ": "+inner {
		return msg[:n]
	}
	return msg
}

func (d *Deserializer) Uint64() (val uint64) {
	size := 8
	d.check(size)

	val = binary.BigEndian.Uint64(d.buf[d.index : d.index+size])
	d.index += size

	return
}

func (d *Deserializer) Uint32() (val uint32) {
	size := 4
	d.check(size)

	val = binary.BigEndian.Uint32(d.buf[d.index : d.index+size])
	d.index += size

	return
}

func (d *Deserializer) Uint16() (val uint16) {
	size := 2
	d.check(size)

	val = binary.BigEndian.Uint16(d.buf[d.index : d.index+size])
	d.index += size

	return
}

func (d *Deserializer) Uint8() (val uint8) {
	d.check(1)

	val = d.buf[d.index]
	d.index++

	return
}

func (d *Deserializer) Uint() (val uint) {
	val = uint(d.Uint64())

	return
}

func (d *Deserializer) Byte() (val byte) {
	val = d.Uint8()
	return
}

func (d *Deserializer) Int64() (val int64) {
	val = int64(d.Uint64())
	return
}

func (d *Deserializer) Int32() (val int32) {
	val = int32(d.Uint32())
	return
}

func (d *Deserializer) Int16() (val int16) {
	val = int16(d.Uint16())
	return
}

func (d *Deserializer) Int8() (val int8) {
	val = int8(d.Uint8())
	return
}

func (d *Deserializer) Int() (val int) {
	val = int(d.Uint64())

	return
}

func (d *Deserializer) Bool() (val bool) {
	val = d.Uint8() == 1

	return
}

func (d *Deserializer) Float32() (val float32) {
	val = math.Float32frombits(d.Uint32())

	return
}

func (d *Deserializer) Float64() (val float64) {
	val = math.Float64frombits(d.Uint64())

	return
}

func (d *Deserializer) String() (val string) {
	size := int(d.Uint32())
	d.check(size)

	val = unsafex.BytesToString(d.buf[d.index : d.index+size])
	d.index += size

	return val
}

func (d *Deserializer) UnmarshalProto(value proto.Message) {
	if err := proto.Unmarshal(d.Bytes(), value); err != nil {
		panic(makeDeserializerError("error decoding to proto %T: %w", value, err))
	}
}

func (d *Deserializer) Bytes() (val []byte) {
	size := d.Uint32()
	if int32(size) == -1 {
		return nil
	}
	d.check(int(size))

	val = d.buf[d.index : d.index+int(size)]
	d.index += int(size)

	return
}

func (d *Deserializer) Len() int {
	n := int(d.Int32())
	if n < -1 {
		panic(makeDeserializerError("length can't be smaller than -1"))
	}

	return n
}
