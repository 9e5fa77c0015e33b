package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values doesn't match the defined labels.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when attempting to add a negative value to a counter.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is returned when registering a metric with a name that is already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// atomicFloat64 stores the bits of a float64 as a uint64 for atomic access.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(val float64) {
	a.bits.Store(math.Float64bits(val))
}

// Add adds delta using a CAS loop.
func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		if a.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+delta)) {
			return
		}
	}
}

// MetricType represents the type of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is the interface implemented by all metric types.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Collect returns all samples for exposition, ordered by label values.
	Collect() []Sample
}

// Label is a single name/value pair of a sample.
type Label struct {
	Name  string
	Value string
}

// Sample represents a single metric sample with labels.
type Sample struct {
	Name   string
	Labels []Label
	Value  float64
}

// family holds one child per label value combination.
type family[V any] struct {
	name       string
	help       string
	labelNames []string
	newChild   func() *V

	mu       sync.RWMutex
	children map[string]*child[V]
}

type child[V any] struct {
	labels []Label
	value  *V
}

func (f *family[V]) init(name, help string, labelNames []string, newChild func() *V) {
	f.name = name
	f.help = help
	f.labelNames = labelNames
	f.newChild = newChild
	f.children = make(map[string]*child[V])
}

func (f *family[V]) Name() string { return f.name }
func (f *family[V]) Help() string { return f.help }

// with returns the child for values, creating it on first use.
func (f *family[V]) with(kind string, values []string) (*V, error) {
	if len(values) != len(f.labelNames) {
		return nil, fmt.Errorf("%w: %s %s expected %d labels, got %d",
			ErrLabelCountMismatch, kind, f.name, len(f.labelNames), len(values))
	}

	key := strings.Join(values, "\x00")
	f.mu.RLock()
	c, ok := f.children[key]
	f.mu.RUnlock()
	if ok {
		return c.value, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.children[key]; ok {
		return c.value, nil
	}
	labels := make([]Label, len(values))
	for i, v := range values {
		labels[i] = Label{Name: f.labelNames[i], Value: v}
	}
	c = &child[V]{labels: labels, value: f.newChild()}
	f.children[key] = c
	return c.value, nil
}

// sorted returns the children ordered by label values.
func (f *family[V]) sorted() []*child[V] {
	f.mu.RLock()
	keys := make([]string, 0, len(f.children))
	for k := range f.children {
		keys = append(keys, k)
	}
	out := make([]*child[V], 0, len(keys))
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, f.children[k])
	}
	f.mu.RUnlock()
	return out
}

func newFloat() *atomicFloat64 { return new(atomicFloat64) }

// Counter is a monotonically increasing metric.
type Counter struct {
	family[atomicFloat64]
}

func newCounter(name, help string, labelNames []string) *Counter {
	c := &Counter{}
	c.init(name, help, labelNames, newFloat)
	return c
}

// Type returns the metric type.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// WithLabels returns the counter for the given label values.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	v, err := c.with("counter", values)
	if err != nil {
		return nil, err
	}
	return &CounterVec{v: v}, nil
}

// Inc increments a counter without labels.
func (c *Counter) Inc() error {
	return c.Add(1)
}

// Add adds delta to a counter without labels.
func (c *Counter) Add(delta float64) error {
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

// Collect returns all metric samples.
func (c *Counter) Collect() []Sample {
	children := c.sorted()
	samples := make([]Sample, 0, len(children))
	for _, ch := range children {
		samples = append(samples, Sample{Name: c.name, Labels: ch.labels, Value: ch.value.Load()})
	}
	return samples
}

// CounterVec is a counter for one label combination.
type CounterVec struct {
	v *atomicFloat64
}

// Inc increments the counter by 1.
func (v *CounterVec) Inc() error {
	return v.Add(1)
}

// Add adds delta, which must not be negative.
func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	v.v.Add(delta)
	return nil
}

// Gauge is a metric that can go up and down.
type Gauge struct {
	family[atomicFloat64]
}

func newGauge(name, help string, labelNames []string) *Gauge {
	g := &Gauge{}
	g.init(name, help, labelNames, newFloat)
	return g
}

// Type returns the metric type.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// WithLabels returns the gauge for the given label values.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	v, err := g.with("gauge", values)
	if err != nil {
		return nil, err
	}
	return &GaugeVec{v: v}, nil
}

// Set sets a gauge without labels.
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Collect returns all metric samples.
func (g *Gauge) Collect() []Sample {
	children := g.sorted()
	samples := make([]Sample, 0, len(children))
	for _, ch := range children {
		samples = append(samples, Sample{Name: g.name, Labels: ch.labels, Value: ch.value.Load()})
	}
	return samples
}

// GaugeVec is a gauge for one label combination.
type GaugeVec struct {
	v *atomicFloat64
}

func (v *GaugeVec) Set(value float64) { v.v.Store(value) }
func (v *GaugeVec) Inc()              { v.v.Add(1) }
func (v *GaugeVec) Dec()              { v.v.Add(-1) }
func (v *GaugeVec) Add(delta float64) { v.v.Add(delta) }

// Histogram tracks the distribution of observed values.
type Histogram struct {
	family[histogramValue]
	buckets []float64
}

type histogramValue struct {
	counts []atomic.Uint64 // per bucket, not cumulative
	sum    atomicFloat64
	count  atomic.Uint64
}

func newHistogram(name, help string, buckets []float64, labelNames []string) *Histogram {
	bounds := slices.Clone(buckets)
	slices.Sort(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}
	h := &Histogram{buckets: bounds}
	h.init(name, help, labelNames, func() *histogramValue {
		return &histogramValue{counts: make([]atomic.Uint64, len(bounds))}
	})
	return h
}

// Type returns the metric type.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// WithLabels returns the histogram for the given label values.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	v, err := h.with("histogram", values)
	if err != nil {
		return nil, err
	}
	return &HistogramVec{v: v, buckets: h.buckets}, nil
}

// Observe records a value in a histogram without labels.
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	vec.Observe(value)
	return nil
}

// Collect returns the cumulative _bucket samples, then _sum and _count,
// for each label combination.
func (h *Histogram) Collect() []Sample {
	children := h.sorted()
	samples := make([]Sample, 0, (len(h.buckets)+2)*len(children))
	for _, ch := range children {
		var cumulative uint64
		for i, bound := range h.buckets {
			cumulative += ch.value.counts[i].Load()
			le := "+Inf"
			if !math.IsInf(bound, 1) {
				le = formatFloat(bound)
			}
			samples = append(samples, Sample{
				Name:   h.name + "_bucket",
				Labels: append(slices.Clone(ch.labels), Label{Name: "le", Value: le}),
				Value:  float64(cumulative),
			})
		}
		samples = append(samples,
			Sample{Name: h.name + "_sum", Labels: ch.labels, Value: ch.value.sum.Load()},
			Sample{Name: h.name + "_count", Labels: ch.labels, Value: float64(ch.value.count.Load())},
		)
	}
	return samples
}

// HistogramVec is a histogram for one label combination.
type HistogramVec struct {
	v       *histogramValue
	buckets []float64
}

// Observe records a value in the histogram.
func (v *HistogramVec) Observe(value float64) {
	i, _ := slices.BinarySearch(v.buckets, value)
	if i == len(v.buckets) {
		i--
	}
	v.v.counts[i].Add(1)
	v.v.sum.Add(value)
	v.v.count.Add(1)
}

// Registry holds all registered metrics.
type Registry struct {
	mu       sync.RWMutex
	metrics  []Metric
	names    map[string]struct{}
	onScrape []func()
}

// NewRegistry creates a new metric registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter creates and registers a new counter.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := newCounter(name, help, labels)
	r.register(c)
	return c
}

// NewGauge creates and registers a new gauge.
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	g := newGauge(name, help, labels)
	r.register(g)
	return g
}

// NewHistogram creates and registers a new histogram with the given buckets.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	h := newHistogram(name, help, buckets, labels)
	r.register(h)
	return h
}

// OnScrape registers fn to run before every exposition, for gauges that
// are sampled rather than updated.
func (r *Registry) OnScrape(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onScrape = append(r.onScrape, fn)
}

// register panics on a duplicate name, which would produce invalid output.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// WriteTo writes every metric with samples in the text format.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	r.mu.RLock()
	metrics := slices.Clone(r.metrics)
	hooks := slices.Clone(r.onScrape)
	r.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}

	cw := &countingWriter{w: w}
	for _, m := range metrics {
		writeMetric(cw, m)
		if cw.err != nil {
			break
		}
	}
	return cw.n, cw.err
}

// Handler returns an http.Handler that serves the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = r.WriteTo(w)
	})
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	n, err := fmt.Fprintf(c.w, format, args...)
	c.n += int64(n)
	c.err = err
}

func writeMetric(w *countingWriter, m Metric) {
	samples := m.Collect()
	if len(samples) == 0 {
		return
	}
	w.printf("# HELP %s %s\n", m.Name(), escapeHelp(m.Help()))
	w.printf("# TYPE %s %s\n", m.Name(), m.Type())
	for _, s := range samples {
		if len(s.Labels) == 0 {
			w.printf("%s %s\n", s.Name, formatFloat(s.Value))
		} else {
			w.printf("%s{%s} %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value))
		}
	}
}

// formatLabels formats labels as key="value",key="value" in declaration order.
func formatLabels(labels []Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.Name + `="` + escapeLabelValue(l.Value) + `"`
	}
	return strings.Join(parts, ",")
}

// formatFloat formats a float64 for Prometheus output.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}

func escapeHelp(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func escapeLabelValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// DefaultBuckets are the default histogram buckets for request durations (in seconds).
var DefaultBuckets = []float64{
	0.001, // 1ms
	0.005, // 5ms
	0.01,  // 10ms
	0.025, // 25ms
	0.05,  // 50ms
	0.1,   // 100ms
	0.25,  // 250ms
	0.5,   // 500ms
	1,     // 1s
	2.5,   // 2.5s
	5,     // 5s
}
