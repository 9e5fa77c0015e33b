// Package metrics collects Prometheus-compatible metrics for the mapping API
// and the mock CRM service, and serves them in the text exposition format
// (text/plain; version=0.0.4).
//
// Supported metric types:
//   - Counter: monotonically increasing value (e.g., request counts)
//   - Gauge: value that can go up or down (e.g., goroutines)
//   - Histogram: distribution of values with configurable buckets (e.g., latencies)
//
// All metrics are safe for concurrent use.
//
// # Server Metrics
//
// New registers the fieldmap metrics on a registry:
//
//   - fieldmap_http_requests_total: counter (labels: server, method, route, status)
//   - fieldmap_http_request_duration_seconds: histogram (labels: server, route)
//   - fieldmap_mapping_changes_total: counter (labels: entity, operation)
//   - fieldmap_records_transformed_total: counter (labels: entity)
//   - fieldmap_unresolved_fields_total: counter (labels: entity)
//   - fieldmap_uptime_seconds, go_goroutines, go_memstats_*: gauges refreshed on scrape
//
// The route label is the ServeMux pattern that matched ("GET /mappings/{entity}"),
// so per-entity paths do not create a series each.
//
// # Usage
//
//	reg := metrics.NewRegistry()
//	m := metrics.New(reg)
//
//	mux.Handle("GET /metrics", reg.Handler())
//	handler := m.Middleware("api")(mux)
//
// Custom metrics can also be created:
//
//	counter := reg.NewCounter("my_counter", "Description of counter", "label1", "label2")
//	vec, _ := counter.WithLabels("value1", "value2")
//	vec.Inc()
package metrics
