// Package tracing runs cell computations inside otel spans and exports the
// finished spans in journal-ready encoded form.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Traced returns a computation decorator that runs each computation inside
// a span named name. A failed computation marks the span with error status
// and records the failure.
func Traced[T any](ctx context.Context, tracer trace.Tracer, name string) func(func() (T, error)) func() (T, error) {
	return func(compute func() (T, error)) func() (T, error) {
		return func() (T, error) {
			_, span := tracer.Start(ctx, name)
			defer span.End()

			v, err := compute()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return v, err
		}
	}
}
