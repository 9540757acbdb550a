package journal

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mizuchi-dev/cellar/runtime/codec"
)

const appendTimeout = time.Second

// Observe returns a computation decorator that appends every evaluation
// outcome of cell to db. Journal failures are logged and do not disturb
// the computation's own outcome.
func Observe[T any](db *DB, cell string) func(func() (T, error)) func() (T, error) {
	return func(compute func() (T, error)) func() (T, error) {
		return func() (T, error) {
			v, err := compute()
			record(db, cell, any(v), err)
			return v, err
		}
	}
}

func record(db *DB, cell string, v any, err error) {
	o := Outcome{
		ID:   gonanoid.Must(12),
		Cell: cell,
		OK:   err == nil,
		Time: time.Now(),
	}

	s := codec.NewSerializer(64)
	defer s.Release()
	s.Bool(o.OK)
	if err != nil {
		o.Display = err.Error()
		s.Error(err)
	} else {
		o.Display = fmt.Sprint(v)
		s.String(o.Display)
	}
	o.Payload = slices.Clone(s.Data())

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()
	if aerr := db.Append(ctx, o); aerr != nil {
		slog.Warn("journal append failed", "cell", cell, "err", aerr)
	}
}

// DecodeOutcome turns an outcome payload back into its display string or
// rebuilt error chain.
func DecodeOutcome(payload []byte) (display string, outcome error, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = codec.Catch(r)
		}
	}()

	d := codec.NewDeserializer(payload)
	if ok := d.Bool(); ok {
		return d.String(), nil, nil
	}
	return "", d.Error(), nil
}
