package metrics

type MetricType int32

const (
	MetricTypeInvalid MetricType = iota
	MetricTypeCounter
	MetricTypeGauge
)

func (t MetricType) String() string {
	switch t {
	case MetricTypeCounter:
		return "counter"
	case MetricTypeGauge:
		return "gauge"
	default:
		return "invalid"
	}
}
