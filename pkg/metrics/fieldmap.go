package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// Metrics is the set of fieldmap metrics shared by the mapping API and the
// mock service. A nil *Metrics records nothing.
type Metrics struct {
	registry       *Registry
	requests       *Counter
	duration       *Histogram
	mappingChanges *Counter
	transformed    *Counter
	unresolved     *Counter
}

// New registers the fieldmap metrics, including runtime gauges, on r.
func New(r *Registry) *Metrics {
	m := &Metrics{
		registry: r,
		requests: r.NewCounter(
			"fieldmap_http_requests_total",
			"Total number of HTTP requests",
			"server", "method", "route", "status",
		),
		duration: r.NewHistogram(
			"fieldmap_http_request_duration_seconds",
			"Duration of HTTP requests in seconds",
			DefaultBuckets,
			"server", "route",
		),
		mappingChanges: r.NewCounter(
			"fieldmap_mapping_changes_total",
			"Rule set saves and deletes",
			"entity", "operation",
		),
		transformed: r.NewCounter(
			"fieldmap_records_transformed_total",
			"Records run through a rule set by the batch transformer",
			"entity",
		),
		unresolved: r.NewCounter(
			"fieldmap_unresolved_fields_total",
			"Source paths with no value in a transformed record",
			"entity",
		),
	}
	registerRuntime(r, time.Now())
	return m
}

// Registry returns the registry the metrics are exposed from.
func (m *Metrics) Registry() *Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the text format.
func (m *Metrics) Handler() http.Handler {
	return m.registry.Handler()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(server, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if vec, err := m.requests.WithLabels(server, method, route, strconv.Itoa(status)); err == nil {
		_ = vec.Inc()
	}
	if vec, err := m.duration.WithLabels(server, route); err == nil {
		vec.Observe(d.Seconds())
	}
}

// MappingChanged records a save or delete of entity's rule set.
func (m *Metrics) MappingChanged(entity, operation string) {
	if m == nil {
		return
	}
	if vec, err := m.mappingChanges.WithLabels(entity, operation); err == nil {
		_ = vec.Inc()
	}
}

// RecordsTransformed records a batch of transformed records and the
// unresolved source paths they contained.
func (m *Metrics) RecordsTransformed(entity string, records, unresolved int) {
	if m == nil {
		return
	}
	if vec, err := m.transformed.WithLabels(entity); err == nil {
		_ = vec.Add(float64(records))
	}
	if vec, err := m.unresolved.WithLabels(entity); err == nil {
		_ = vec.Add(float64(unresolved))
	}
}
