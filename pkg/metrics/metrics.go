// Package metrics provides performance tracking and observability for respool
// using Prometheus metrics. It offers a per-pool collector covering resource
// lifecycle counts, borrow latency, and pool occupancy.
//
// # Overview
//
// The metrics package provides:
//   - Prometheus-compatible metrics collection
//   - Pre-defined metrics for pool lifecycle events
//   - Borrow-latency and task-duration tracking
//   - Thread-safe metric recording
//   - Automatic metric registration
//
// # Basic Usage
//
//	collector := metrics.NewCollector("db_connections")
//
//	// Record a resource creation
//	collector.ResourceCreated()
//
//	// Track how long a caller waited to borrow a resource
//	timer := metrics.NewTimer("borrow_wait")
//	res := acquire()
//	collector.ObserveBorrowWait(timer.Stop())
//
//	// Keep occupancy gauges current
//	collector.SetOccupancy(current, target, idle, waiting)
//
// # Metric Types
//
// Counter: Monotonically increasing values (e.g., total resources created)
// Gauge: Values that can go up or down (e.g., idle resources)
// Histogram: Distribution of values (e.g., borrow-wait percentiles)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides a centralized metrics collection interface for a single
// pool. It wraps the package-level Prometheus metrics with the pool name as
// the label value. Each pool should create its own collector.
type Collector struct {
	name      string
	startTime time.Time
}

// NewCollector creates a new metrics collector for a pool.
// The name parameter identifies the pool in metrics labels.
func NewCollector(name string) *Collector {
	return &Collector{
		name:      name,
		startTime: time.Now(),
	}
}

// Name returns the pool name used as the metrics label.
func (c *Collector) Name() string {
	return c.name
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// ResourceCreated records a successful factory Create call.
func (c *Collector) ResourceCreated() {
	ResourcesCreated.WithLabelValues(c.name).Inc()
}

// ResourceDisposed records a Dispose call with its outcome status
// ("success" or "failure").
func (c *Collector) ResourceDisposed(status string) {
	ResourcesDisposed.WithLabelValues(c.name, status).Inc()
}

// BorrowCompleted records a finished borrow cycle with its outcome status.
func (c *Collector) BorrowCompleted(status string) {
	Borrows.WithLabelValues(c.name, status).Inc()
}

// ObserveBorrowWait records how long a caller waited for a resource.
func (c *Collector) ObserveBorrowWait(d time.Duration) {
	BorrowWait.WithLabelValues(c.name).Observe(float64(d.Nanoseconds()))
}

// ObserveTaskDuration records how long a borrowed resource was held.
func (c *Collector) ObserveTaskDuration(d time.Duration) {
	TaskDuration.WithLabelValues(c.name).Observe(float64(d.Nanoseconds()))
}

// SetOccupancy updates the pool occupancy gauges in one call.
func (c *Collector) SetOccupancy(current, target, idle, waiting int) {
	CurrentSize.WithLabelValues(c.name).Set(float64(current))
	TargetSize.WithLabelValues(c.name).Set(float64(target))
	IdleResources.WithLabelValues(c.name).Set(float64(idle))
	WaitingBorrowers.WithLabelValues(c.name).Set(float64(waiting))
}

var (
	// ResourcesCreated tracks the total number of resources created per pool.
	// Labels: pool (pool name)
	ResourcesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respool_resources_created_total",
			Help: "Total number of resources created",
		},
		[]string{"pool"},
	)

	// ResourcesDisposed tracks the total number of resources disposed per
	// pool. Labels: pool, status (success/failure)
	ResourcesDisposed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respool_resources_disposed_total",
			Help: "Total number of resources disposed",
		},
		[]string{"pool", "status"},
	)

	// Borrows tracks completed borrow cycles per pool.
	// Labels: pool, status (success/failure)
	Borrows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respool_borrows_total",
			Help: "Total number of completed borrow cycles",
		},
		[]string{"pool", "status"},
	)

	// BorrowWait tracks the distribution of borrow-wait latencies in
	// nanoseconds. The buckets are optimized for sub-millisecond handoffs
	// while still covering long waits on an exhausted pool.
	BorrowWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "respool_borrow_wait_nanoseconds",
			Help: "Time spent waiting to borrow a resource in nanoseconds",
			Buckets: []float64{
				100,   // 100ns - buffered handoff
				1000,  // 1μs - rendezvous handoff
				10000, // 10μs - brief contention
				1e5,   // 100μs
				1e6,   // 1ms
				1e7,   // 10ms - waiting on a busy pool
				1e8,   // 100ms
				1e9,   // 1s - exhausted pool
			},
		},
		[]string{"pool"},
	)

	// TaskDuration tracks how long borrowed resources are held in nanoseconds.
	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "respool_task_duration_nanoseconds",
			Help: "Time a borrowed resource was held in nanoseconds",
			Buckets: []float64{
				1000, // 1μs
				1e4,  // 10μs
				1e5,  // 100μs
				1e6,  // 1ms
				1e7,  // 10ms
				1e8,  // 100ms
				1e9,  // 1s
				1e10, // 10s
			},
		},
		[]string{"pool"},
	)

	// CurrentSize tracks the number of live resources per pool
	CurrentSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respool_current_size",
			Help: "Number of live resources",
		},
		[]string{"pool"},
	)

	// TargetSize tracks the desired number of resources per pool
	TargetSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respool_target_size",
			Help: "Desired number of resources",
		},
		[]string{"pool"},
	)

	// IdleResources tracks the idle-queue depth per pool
	IdleResources = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respool_idle_resources",
			Help: "Number of idle resources awaiting borrowers",
		},
		[]string{"pool"},
	)

	// WaitingBorrowers tracks callers blocked waiting for a resource
	WaitingBorrowers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respool_waiting_borrowers",
			Help: "Number of callers blocked waiting for a resource",
		},
		[]string{"pool"},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
//
// Example:
//
//	timer := metrics.NewTimer("borrow_wait")
//	res := acquire()
//	duration := timer.Stop()
//	logger.Info("resource acquired", zap.Duration("duration", duration))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop stops the timer and returns the elapsed duration since creation.
// The timer can be stopped multiple times, each returning the total
// elapsed time since creation.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)
	return duration
}
