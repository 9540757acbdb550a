package metrics

type Gauge struct {
	impl *Metric
}

func NewGauge(name string) *Gauge {
	return &Gauge{impl: Register(MetricTypeGauge, name)}
}

func (g *Gauge) Name() string {
	return g.impl.Name()
}

func (g *Gauge) Set(val float64) {
	g.impl.Set(val)
}

func (g *Gauge) Add(delta float64) {
	g.impl.Add(delta)
}

func (g *Gauge) Sub(delta float64) {
	g.impl.Sub(delta)
}
