package metrics

type Counter struct {
	impl *Metric
}

func NewCounter(name string) *Counter {
	return &Counter{impl: Register(MetricTypeCounter, name)}
}

func (c *Counter) Name() string {
	return c.impl.Name()
}

func (c *Counter) Inc() {
	c.impl.Inc()
}

func (c *Counter) Add(delta float64) {
	c.impl.Add(delta)
}
