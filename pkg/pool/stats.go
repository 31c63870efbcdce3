package pool

import (
	"context"

	json "github.com/goccy/go-json"
)

// Stats is a point-in-time snapshot of pool state and lifetime counters.
type Stats struct {
	// CurrentSize is the number of live resources, including lent-out ones
	CurrentSize int `json:"current_size"`
	// TargetSize is the desired resource count
	TargetSize int `json:"target_size"`
	// Idle is the idle-queue depth
	Idle int `json:"idle"`
	// Waiting is the number of callers blocked waiting for a resource
	Waiting int `json:"waiting"`
	// Created is the total number of resources created
	Created int64 `json:"created"`
	// Disposed is the total number of resources retired
	Disposed int64 `json:"disposed"`
	// Borrows is the total number of completed borrow cycles, including
	// the internal claims a shrink makes while retiring excess resources
	Borrows int64 `json:"borrows"`
	// TaskFailures is the number of borrows whose task or accessor failed
	TaskFailures int64 `json:"task_failures"`
}

// String renders the snapshot as JSON.
func (s Stats) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}

// Stats returns a snapshot of the pool. The size fields are read together
// under the pool lock; the lifetime counters are read atomically and may
// trail concurrent operations by a call or two.
func (p *Pool[R, V]) Stats() Stats {
	p.mu.Lock()
	current, target := p.current, p.target
	p.mu.Unlock()

	return Stats{
		CurrentSize:  current,
		TargetSize:   target,
		Idle:         p.queue.Len(),
		Waiting:      p.queue.Waiting(),
		Created:      p.created.Load(),
		Disposed:     p.disposed.Load(),
		Borrows:      p.borrows.Load(),
		TaskFailures: p.taskFailures.Load(),
	}
}

// UseValue borrows a resource from p and returns the task's computed value,
// for the common borrow-compute-return shape. It is a thin wrapper over
// Use; Go methods cannot introduce type parameters, so the result type
// lives on this package-level helper.
func UseValue[R, V, T any](ctx context.Context, p *Pool[R, V], fn func(ctx context.Context, v V) (T, error), opts ...UseOption) (T, error) {
	var out T
	err := p.Use(ctx, func(ctx context.Context, v V) error {
		var err error
		out, err = fn(ctx, v)
		return err
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
