package pool

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/pkg/errors"
	"github.com/ajitpratap0/respool/pkg/handoff"
	"github.com/ajitpratap0/respool/pkg/logger"
	"github.com/ajitpratap0/respool/pkg/metrics"
)

// Sentinel errors returned by pool operations. Compare with errors.Is.
var (
	// ErrResizeInProgress is returned by Resize when another Resize has not
	// finished converging yet.
	ErrResizeInProgress = errors.New(errors.ErrorTypeConflict, "resize already in progress")

	// ErrPoolClosed is returned by Use and Resize after Close.
	ErrPoolClosed = errors.New(errors.ErrorTypeConflict, "pool is closed")
)

// Task is a caller-supplied unit of work executed against a borrowed view.
type Task[V any] func(ctx context.Context, v V) error

// Pool is a dynamically resizable resource pool. Construct with New.
// All methods are safe for concurrent use.
type Pool[R, V any] struct {
	name    string
	factory Factory[R, V]
	log     *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer

	// queue holds idle resources; borrowers block on it FIFO.
	queue *handoff.Queue[R]

	// mu guards current, target, and closed. The counters are only read or
	// written under it so size checks and adjustments are atomic with
	// respect to each other. Queue operations that must not race a size
	// decision also run under mu; lock order is always mu before the
	// queue's internal lock.
	mu      sync.Mutex
	current int
	target  int
	closed  bool

	// resizing is the concurrent-resize guard.
	resizing atomic.Bool

	created      atomic.Int64
	disposed     atomic.Int64
	borrows      atomic.Int64
	taskFailures atomic.Int64
}

// New constructs a pool and synchronously converges it to cfg.Size before
// returning. If any creation fails, resources created so far are disposed
// and the error propagates.
func New[R, V any](ctx context.Context, cfg Config[R, V]) (*Pool[R, V], error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "respool"
	}
	log := cfg.Logger
	if log == nil {
		log = logger.ForPool(name)
	} else {
		log = log.With(zap.String("pool", name))
	}

	p := &Pool[R, V]{
		name:    name,
		factory: cfg.Factory,
		log:     log,
		metrics: cfg.Metrics,
		tracer:  otel.Tracer("respool/pool"),
		queue:   handoff.New[R](),
	}

	if err := p.Resize(ctx, cfg.Size); err != nil {
		p.drainForTeardown(ctx)
		return nil, err
	}

	p.log.Debug("pool created", zap.Int("size", cfg.Size))
	return p, nil
}

// Use borrows one resource, derives its view through the factory Access
// operation, invokes task with the view, and guarantees the resource is
// either returned to the idle queue or retired before Use completes - on
// every exit path, including task or Access failure.
//
// When the idle queue is empty and the live count is below target, Use
// lazily creates a resource first. When all resources are lent out, Use
// blocks until one is released or ctx is done.
//
// If the borrow/return cycle finds the live count above target, the
// resource is retired instead of returned: Dispose runs without blocking
// the caller unless WithAwaitDisposal was given, in which case Use waits
// for it and propagates its error.
func (p *Pool[R, V]) Use(ctx context.Context, task Task[V], opts ...UseOption) error {
	var o useOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := p.tracer.Start(ctx, "pool.use",
		trace.WithAttributes(attribute.String("pool.name", p.name)))
	defer span.End()
	ctx = logger.Tag(ctx, p.name, "use")

	err := p.borrow(ctx, task, o.awaitDisposal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Resize adjusts the target size to n and converges the live count to
// match: it creates resources one at a time for growth, and for shrinkage
// claims excess resources through the same FIFO queue borrowers use - from
// the idle buffer when possible, otherwise by joining the borrower line
// and waiting for a release. A shrink never preempts a lent-out resource.
//
// Only one Resize may be in flight at a time; a concurrent call fails
// immediately with ErrResizeInProgress. A Create or Dispose failure aborts
// convergence and propagates, leaving the live count consistent with the
// resources that actually exist.
func (p *Pool[R, V]) Resize(ctx context.Context, n int) error {
	if n < 0 {
		return errors.New(errors.ErrorTypeValidation, "target size must not be negative").
			WithDetail("target", n)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	if !p.resizing.CompareAndSwap(false, true) {
		return ErrResizeInProgress
	}
	defer p.resizing.Store(false)

	ctx, span := p.tracer.Start(ctx, "pool.resize",
		trace.WithAttributes(
			attribute.String("pool.name", p.name),
			attribute.Int("pool.target", n),
		))
	defer span.End()
	ctx = logger.Tag(ctx, p.name, "resize")

	p.mu.Lock()
	from := p.target
	p.target = n
	p.mu.Unlock()

	p.log.Debug("resizing pool", zap.Int("from", from), zap.Int("to", n))

	err := p.converge(ctx)
	p.observeOccupancy()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	p.log.Debug("pool resized", zap.Int("target", n))
	return nil
}

// Close retires every resource and marks the pool closed; subsequent Use
// and Resize calls fail with ErrPoolClosed, and so does a borrower still
// waiting when the drain completes. Close is idempotent. A Close racing an
// in-flight Resize fails with ErrResizeInProgress and leaves the pool open.
func (p *Pool[R, V]) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if !p.resizing.CompareAndSwap(false, true) {
		return ErrResizeInProgress
	}
	defer p.resizing.Store(false)

	// closed is set before the drain so no new borrower can commit to a
	// wait that nothing will ever fulfill.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.target = 0
	p.mu.Unlock()

	ctx, span := p.tracer.Start(ctx, "pool.close",
		trace.WithAttributes(attribute.String("pool.name", p.name)))
	defer span.End()
	ctx = logger.Tag(ctx, p.name, "close")

	err := p.converge(ctx)

	// Fail any borrower that slipped past its closed check and registered
	// behind the drain; with the pool empty it would wait forever.
	p.queue.AbortWaiters()
	p.observeOccupancy()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	p.log.Debug("pool closed")
	return nil
}

// Size returns the number of live resources, including lent-out ones.
func (p *Pool[R, V]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Target returns the desired resource count set by the last Resize.
func (p *Pool[R, V]) Target() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// Idle returns the number of idle resources awaiting borrowers.
func (p *Pool[R, V]) Idle() int {
	return p.queue.Len()
}

// Waiting returns the number of callers blocked waiting for a resource.
func (p *Pool[R, V]) Waiting() int {
	return p.queue.Waiting()
}

// converge creates or retires resources until the live count matches the
// target. Growth produces directly into the queue. Shrinkage claims one
// excess resource per iteration, from the idle buffer when possible,
// otherwise by registering in the borrower line and waiting for a release.
//
// The over-target check and the claim (or the registration) happen in one
// mu critical section. A release deciding to retire holds mu for its own
// check, so it either retires before the shrink commits to waiting, in
// which case the re-checked count ends the loop, or it finds the shrink
// already registered and feeds it instead of retiring.
func (p *Pool[R, V]) converge(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.current < p.target {
			p.current++
			p.mu.Unlock()

			res, err := p.factory.Create(ctx)
			if err != nil {
				p.mu.Lock()
				p.current--
				p.mu.Unlock()
				return errors.Wrap(err, errors.ErrorTypeResource, "resource creation failed")
			}
			p.created.Add(1)
			if p.metrics != nil {
				p.metrics.ResourceCreated()
			}
			p.queue.Enqueue(res)
			continue
		}
		if p.current == p.target {
			p.mu.Unlock()
			return nil
		}

		res, ok, w := p.queue.DequeueOrRegister()
		if ok {
			p.current--
			p.mu.Unlock()
		} else {
			p.mu.Unlock()

			claimed, err := w.Await(ctx)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeTimeout, "shrink interrupted")
			}
			p.mu.Lock()
			if p.current <= p.target {
				// A release retired the excess while the claim was in
				// flight; put the resource back into rotation.
				p.mu.Unlock()
				p.queue.Enqueue(claimed)
				continue
			}
			p.current--
			p.mu.Unlock()
			res = claimed
		}

		p.borrows.Add(1)
		if err := p.retireResource(ctx, res, true); err != nil {
			return err
		}
	}
}

// borrow is the guarded borrow/access/task/release cycle behind Use.
func (p *Pool[R, V]) borrow(ctx context.Context, task Task[V], awaitDisposal bool) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	wait := metrics.NewTimer("borrow_wait")
	res, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.ObserveBorrowWait(wait.Stop())
	}
	p.borrows.Add(1)

	held := metrics.NewTimer("task_duration")
	v, taskErr := p.view(ctx, res)
	if taskErr == nil {
		taskErr = task(ctx, v)
	}
	if p.metrics != nil {
		p.metrics.ObserveTaskDuration(held.Stop())
	}
	if taskErr != nil {
		p.taskFailures.Add(1)
	}

	releaseErr := p.release(ctx, res, awaitDisposal)

	if p.metrics != nil {
		status := "success"
		if taskErr != nil || releaseErr != nil {
			status = "failure"
		}
		p.metrics.BorrowCompleted(status)
	}
	p.observeOccupancy()

	// The task outcome wins; an awaited disposal failure surfaces only
	// when the task itself succeeded.
	if taskErr != nil {
		if releaseErr != nil {
			p.log.Error("resource disposal failed after task failure", zap.Error(releaseErr))
		}
		return taskErr
	}
	return releaseErr
}

// acquire hands out one resource, creating lazily when demand is unmet and
// nothing is immediately available, and otherwise waiting FIFO on the
// queue.
func (p *Pool[R, V]) acquire(ctx context.Context) (R, error) {
	var zero R

	p.mu.Lock()
	if p.current < p.target && p.queue.Len() == 0 {
		p.current++
		p.mu.Unlock()

		res, err := p.factory.Create(ctx)
		if err != nil {
			// The increment and the creation are one unit: a resource
			// that failed to materialize must not count as live.
			p.mu.Lock()
			p.current--
			p.mu.Unlock()
			return zero, errors.Wrap(err, errors.ErrorTypeResource, "resource creation failed")
		}
		p.created.Add(1)
		if p.metrics != nil {
			p.metrics.ResourceCreated()
		}
		p.log.Debug("resource created lazily", zap.Int("current", p.Size()))

		// Enqueue rather than keep: an earlier waiter may be ahead of us.
		p.queue.Enqueue(res)
		p.mu.Lock()
	}

	if p.closed && p.current == 0 {
		// Close drained everything; nothing will ever be enqueued again.
		p.mu.Unlock()
		return zero, ErrPoolClosed
	}
	res, ok, w := p.queue.DequeueOrRegister()
	p.mu.Unlock()
	if ok {
		return res, nil
	}

	res, err := w.Await(ctx)
	if err != nil {
		if err == handoff.ErrAborted {
			return zero, ErrPoolClosed
		}
		return zero, errors.Wrap(err, errors.ErrorTypeTimeout, "borrow cancelled")
	}
	return res, nil
}

// release puts the resource back into rotation, or retires it when the
// live count exceeds the target.
//
// Retirement is skipped while a borrower is waiting: the resource goes to
// the oldest waiter instead, and the over-target check runs again when that
// borrow completes. Retiring past a pending waiter could strand a shrink's
// committed claim on an empty queue, and would serve newcomers ahead of it.
func (p *Pool[R, V]) release(ctx context.Context, res R, awaitDisposal bool) error {
	p.mu.Lock()
	if p.current > p.target && p.queue.Waiting() == 0 {
		p.current--
		p.mu.Unlock()
		return p.retireResource(ctx, res, awaitDisposal)
	}
	p.mu.Unlock()

	p.queue.Enqueue(res)
	return nil
}

// retireResource disposes a resource that has been removed from rotation.
// When not awaited, disposal proceeds in the background and a failure is
// surfaced through the error log rather than swallowed.
func (p *Pool[R, V]) retireResource(ctx context.Context, res R, await bool) error {
	p.disposed.Add(1)
	p.log.Debug("resource retired", zap.Int("current", p.Size()))

	if p.factory.Dispose == nil {
		if p.metrics != nil {
			p.metrics.ResourceDisposed("success")
		}
		return nil
	}

	if await {
		if err := p.factory.Dispose(ctx, res); err != nil {
			if p.metrics != nil {
				p.metrics.ResourceDisposed("failure")
			}
			return errors.Wrap(err, errors.ErrorTypeResource, "resource disposal failed")
		}
		if p.metrics != nil {
			p.metrics.ResourceDisposed("success")
		}
		return nil
	}

	go func() {
		// Detached from the borrowing caller's cancellation; the resource
		// is already out of rotation.
		if err := p.factory.Dispose(context.WithoutCancel(ctx), res); err != nil {
			if p.metrics != nil {
				p.metrics.ResourceDisposed("failure")
			}
			p.log.Error("resource disposal failed", zap.Error(err))
			return
		}
		if p.metrics != nil {
			p.metrics.ResourceDisposed("success")
		}
	}()
	return nil
}

// view derives the task-visible view of a borrowed resource.
func (p *Pool[R, V]) view(ctx context.Context, res R) (V, error) {
	if p.factory.Access != nil {
		v, err := p.factory.Access(ctx, res)
		if err != nil {
			var zero V
			return zero, errors.Wrap(err, errors.ErrorTypeResource, "resource access failed")
		}
		return v, nil
	}
	// Config.Check guarantees R and V are the same type when Access is nil.
	return any(res).(V), nil
}

// drainForTeardown retires whatever the queue holds after a failed
// construction. Best effort; disposal failures are logged.
func (p *Pool[R, V]) drainForTeardown(ctx context.Context) {
	p.mu.Lock()
	p.target = 0
	p.mu.Unlock()

	for p.queue.Len() > 0 {
		res, err := p.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		p.mu.Lock()
		p.current--
		p.mu.Unlock()
		if err := p.retireResource(ctx, res, true); err != nil {
			p.log.Error("teardown disposal failed", zap.Error(err))
		}
	}
}

// observeOccupancy refreshes the occupancy gauges.
func (p *Pool[R, V]) observeOccupancy() {
	if p.metrics == nil {
		return
	}
	p.mu.Lock()
	current, target := p.current, p.target
	p.mu.Unlock()
	p.metrics.SetOccupancy(current, target, p.queue.Len(), p.queue.Waiting())
}
