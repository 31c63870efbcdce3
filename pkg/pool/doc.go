// Package pool implements a dynamically resizable resource pool that
// serializes access to a set of expensive-to-create resources across
// concurrent callers. It guarantees that each resource is held by at most
// one caller at a time and that waiting callers are served in strict
// first-come-first-served order.
//
// # Architecture
//
// The pool is built on two pieces:
//
//   - A FIFO handoff queue (pkg/handoff) holding idle resources. Waiting
//     borrowers and idle resources meet through the queue, which preserves
//     arrival order on both sides.
//   - A controller owning the target/current size counters. Use borrows a
//     resource, runs a caller task against it, and either returns the
//     resource to the queue or retires it. Resize converges the live count
//     to a new target by creating resources directly and claiming excess
//     ones through the same FIFO queue borrowers use.
//
// Routing retirement through the shared queue means shrinks line up
// FIFO-fairly behind in-flight borrows instead of preempting them. The
// over-target check and the decision to wait are made atomically under the
// pool lock, so a release finishing concurrently either retires the excess
// itself before the shrink commits to waiting or hands its resource to the
// waiting shrink.
//
// # Lifecycle
//
// A resource is created when the live count is below target, either eagerly
// by Resize or lazily by Use when the idle queue is empty. It is disposed
// exactly once, when a shrink claims it or a borrow/return cycle observes
// the live count above target. The live count may transiently exceed the
// target during a shrink until the excess drains.
//
// # Basic Usage
//
//	p, err := pool.New(ctx, pool.Config[*grpc.ClientConn, *grpc.ClientConn]{
//	    Name: "upstream_conns",
//	    Size: 8,
//	    Factory: pool.Factory[*grpc.ClientConn, *grpc.ClientConn]{
//	        Create:  func(ctx context.Context) (*grpc.ClientConn, error) { return dial(ctx) },
//	        Dispose: func(ctx context.Context, c *grpc.ClientConn) error { return c.Close() },
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close(context.Background())
//
//	err = p.Use(ctx, func(ctx context.Context, c *grpc.ClientConn) error {
//	    return call(ctx, c)
//	})
//
// Task results come back through closure capture, or through the generic
// UseValue helper for the borrow-compute-return shape:
//
//	n, err := pool.UseValue(ctx, p, func(ctx context.Context, c *grpc.ClientConn) (int, error) {
//	    return count(ctx, c)
//	})
//
// # Concurrency
//
// All methods are safe for concurrent use. Borrow requests, including the
// ones Resize issues while shrinking, are served strictly FIFO. Only one
// Resize may be in flight at a time; a second call fails fast with
// ErrResizeInProgress.
package pool
