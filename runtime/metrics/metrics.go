package metrics

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mizuchi-dev/cellar/internal/unsafex"
)

var (
	metricMu sync.RWMutex
	metrics  []*Metric
)

type Metric struct {
	typ  MetricType
	name string

	once sync.Once // initializes id
	id   uint64    // globally unique id

	fValue atomicFloat64 // Counter and Gauge value
	iValue atomic.Uint64 // integer increments of a Counter
}

type MetricSnapshot struct {
	Id   uint64
	Name string
	Typ  MetricType

	Value float64
}

func (m *MetricSnapshot) Clone() *MetricSnapshot {
	c := *m
	return &c
}

func Register(typ MetricType, name string) *Metric {
	metricMu.Lock()
	defer metricMu.Unlock()

	metric := &Metric{
		typ:  typ,
		name: name,
	}
	metrics = append(metrics, metric)

	return metric
}

func (m *Metric) Name() string {
	return m.name
}

func (m *Metric) Inc() {
	m.iValue.Add(1)
}

func (m *Metric) Add(delta float64) {
	m.fValue.add(delta)
}

func (m *Metric) Sub(delta float64) {
	m.fValue.add(-delta)
}

func (m *Metric) Set(val float64) {
	m.fValue.set(val)
}

// initId assigns the metric id lazily, on first export, to keep metric
// construction cheap.
func (m *Metric) initId() {
	m.once.Do(func() {
		// An 8-char nanoid reinterpreted as a 64-bit integer.
		id := gonanoid.Must(8)
		m.id = binary.LittleEndian.Uint64(unsafex.StringToBytes(id))
	})
}

func (m *Metric) get() float64 {
	return m.fValue.get() + float64(m.iValue.Load())
}

func (m *Metric) Snapshot() *MetricSnapshot {
	return &MetricSnapshot{
		Id:    m.id,
		Typ:   m.typ,
		Name:  m.name,
		Value: m.get(),
	}
}

func Snapshot() []*MetricSnapshot {
	metricMu.RLock()
	defer metricMu.RUnlock()

	snapshots := make([]*MetricSnapshot, 0, len(metrics))
	for _, metric := range metrics {
		metric.initId()
		snapshots = append(snapshots, metric.Snapshot())
	}

	return snapshots
}
