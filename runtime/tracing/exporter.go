package tracing

import (
	"context"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mizuchi-dev/cellar/runtime/codec"
)

// SpanData is the journal-ready form of a finished span: the queryable
// fields broken out, the rest codec-encoded.
type SpanData struct {
	TraceID     string
	SpanID      string
	Name        string
	Root        bool // true when the span has no parent
	StartMicros int64
	EndMicros   int64
	Status      string // "" when the span succeeded
	Encoded     []byte
}

// Exporter hands finished spans to an export function, one batch at a
// time.
type Exporter struct {
	mu     sync.Mutex
	export func(spans []SpanData) error
}

var _ sdktrace.SpanExporter = (*Exporter)(nil)

func NewExporter(export func(spans []SpanData) error) *Exporter {
	return &Exporter{export: export}
}

func (e *Exporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	out := make([]SpanData, len(spans))
	for i, span := range spans {
		out[i] = toSpanData(span)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.export(out)
}

func (e *Exporter) Shutdown(ctx context.Context) error {
	return nil
}

func toSpanData(span sdktrace.ReadOnlySpan) SpanData {
	tid := span.SpanContext().TraceID()
	sid := span.SpanContext().SpanID()
	psid := span.Parent().SpanID()

	sd := SpanData{
		TraceID:     tid.String(),
		SpanID:      sid.String(),
		Name:        span.Name(),
		Root:        !span.Parent().SpanID().IsValid(),
		StartMicros: span.StartTime().UnixMicro(),
		EndMicros:   span.EndTime().UnixMicro(),
		Status:      statusString(span.Status()),
	}

	s := codec.NewSerializer(256)
	defer s.Release()

	s.String(span.Name())
	s.Bytes(tid[:])
	s.Bytes(sid[:])
	s.Bytes(psid[:])
	s.Int64(sd.StartMicros)
	s.Int64(sd.EndMicros)
	s.Uint32(uint32(span.Status().Code))
	s.String(span.Status().Description)
	attrs := span.Attributes()
	s.Len(len(attrs))
	for _, kv := range attrs {
		s.String(string(kv.Key))
		s.String(kv.Value.Emit())
	}

	sd.Encoded = slices.Clone(s.Data())
	return sd
}

func statusString(st sdktrace.Status) string {
	if st.Code != codes.Error {
		return ""
	}
	if st.Description != "" {
		return st.Description
	}
	return "unknown error"
}

// DecodeSpanName reads the span name back out of an encoded span. The name
// is the first field written, so nothing else needs decoding.
func DecodeSpanName(encoded []byte) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = codec.Catch(r)
		}
	}()

	d := codec.NewDeserializer(encoded)
	return d.String(), nil
}
