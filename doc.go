// Package respool provides shared, serialized access to a dynamically-sized
// set of expensive-to-create resources (worker handles, network clients,
// rate-limited sessions) across concurrent callers.
//
// The pool guarantees two things under arbitrary interleaving of callers:
//   - each resource is held by at most one caller at a time, and
//   - waiting callers are served in strict first-come-first-served order.
//
// # Architecture
//
// respool is two small pieces composed bottom-up:
//
// 1. Handoff Queue (pkg/handoff): a generic asynchronous FIFO container
// with rendezvous semantics - an enqueued item is handed directly to the
// oldest waiting consumer when one exists, bypassing storage, and a
// consumer that arrives before supply suspends in arrival order.
//
// 2. Pool Controller (pkg/pool): owns the target/current size counters and
// the queue. Use borrows a resource around a caller-supplied task; Resize
// converges the live count to a new target, claiming excess resources
// through the very same FIFO queue borrowers wait on, so shrinks take
// their turn behind in-flight borrows.
//
// # Quick Start
//
// Pool a set of client connections:
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/respool/pkg/pool"
//	)
//
//	p, err := pool.New(ctx, pool.Config[*Client, *Client]{
//	    Name: "clients",
//	    Size: 8,
//	    Factory: pool.Factory[*Client, *Client]{
//	        Create:  func(ctx context.Context) (*Client, error) { return dial(ctx) },
//	        Dispose: func(ctx context.Context, c *Client) error { return c.Close() },
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close(context.Background())
//
//	err = p.Use(ctx, func(ctx context.Context, c *Client) error {
//	    return c.Do(ctx)
//	})
//
//	// Scale down; excess resources retire as they become idle.
//	err = p.Resize(ctx, 2)
//
// # Key Packages
//
//	pkg/pool     - Resizable pool controller (Use, Resize, Close, Stats)
//	pkg/handoff  - FIFO rendezvous queue the controller is built on
//	pkg/errors   - Structured typed errors
//	pkg/logger   - Structured logging (zap)
//	pkg/metrics  - Prometheus collectors for pool occupancy and latency
//	pkg/testutil - Test helpers, including a counting factory
//
// # Observability
//
// Pools log lifecycle events through zap, export occupancy and latency
// through Prometheus when given a metrics collector, and open OpenTelemetry
// spans around Use and Resize.
package respool
