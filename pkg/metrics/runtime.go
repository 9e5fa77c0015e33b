package metrics

import (
	"runtime"
	"time"
)

// runtimeGauges samples the Go runtime and process uptime on each scrape.
type runtimeGauges struct {
	start      time.Time
	uptime     *Gauge
	goroutines *Gauge
	heapAlloc  *Gauge
	heapInuse  *Gauge
	heapObj    *Gauge
	gcPause    *Gauge
	numGC      *Gauge
}

// registerRuntime adds the runtime gauges to r and refreshes them before
// every exposition.
func registerRuntime(r *Registry, start time.Time) {
	rg := &runtimeGauges{
		start:      start,
		uptime:     r.NewGauge("fieldmap_uptime_seconds", "Seconds since the process started serving"),
		goroutines: r.NewGauge("go_goroutines", "Number of goroutines that currently exist"),
		heapAlloc:  r.NewGauge("go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use"),
		heapInuse:  r.NewGauge("go_memstats_heap_inuse_bytes", "Number of heap bytes that are in use"),
		heapObj:    r.NewGauge("go_memstats_heap_objects", "Number of allocated heap objects"),
		gcPause:    r.NewGauge("go_gc_duration_seconds", "Total GC pause duration in seconds"),
		numGC:      r.NewGauge("go_gc_cycles_total", "Total number of completed GC cycles"),
	}
	info := r.NewGauge("go_info", "Information about the Go environment", "version")
	if vec, err := info.WithLabels(runtime.Version()); err == nil {
		vec.Set(1)
	}
	r.OnScrape(rg.collect)
}

func (rg *runtimeGauges) collect() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	_ = rg.uptime.Set(time.Since(rg.start).Seconds())
	_ = rg.goroutines.Set(float64(runtime.NumGoroutine()))
	_ = rg.heapAlloc.Set(float64(mem.HeapAlloc))
	_ = rg.heapInuse.Set(float64(mem.HeapInuse))
	_ = rg.heapObj.Set(float64(mem.HeapObjects))
	// PauseTotalNs is cumulative; PauseNs is a ring that wraps after 256 GCs.
	_ = rg.gcPause.Set(float64(mem.PauseTotalNs) / 1e9)
	_ = rg.numGC.Set(float64(mem.NumGC))
}
