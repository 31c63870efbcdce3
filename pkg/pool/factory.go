package pool

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/pkg/errors"
	"github.com/ajitpratap0/respool/pkg/metrics"
)

// Factory supplies the resource lifecycle operations. The pool treats
// resources as opaque: it never inspects them, only threads them between
// the factory, the idle queue, and caller tasks.
//
// R is the resource type held by the pool; V is the view handed to tasks.
type Factory[R, V any] struct {
	// Create produces a new resource. Required. A failure propagates to
	// whichever caller triggered the creation; the pool does not retry.
	Create func(ctx context.Context) (R, error)

	// Dispose destroys a resource on retirement. Optional. It is invoked
	// exactly once per resource, and never for resources whose Create
	// failed.
	Dispose func(ctx context.Context, r R) error

	// Access derives the view a task sees from the borrowed resource,
	// invoked once per Use call. Optional when R and V are the same type,
	// in which case the resource itself is the view.
	Access func(ctx context.Context, r R) (V, error)
}

// Config carries everything needed to construct a Pool.
type Config[R, V any] struct {
	// Name identifies the pool in logs, metrics, and traces.
	// Defaults to "respool".
	Name string

	// Size is the initial target size. New converges the pool to this
	// size before returning.
	Size int

	// Factory supplies the resource lifecycle operations.
	Factory Factory[R, V]

	// Logger receives lifecycle events. Defaults to the global logger.
	Logger *zap.Logger

	// Metrics, when set, receives lifecycle counters, occupancy gauges,
	// and latency observations.
	Metrics *metrics.Collector
}

// Check validates the configuration.
func (c *Config[R, V]) Check() error {
	if c.Factory.Create == nil {
		return errors.New(errors.ErrorTypeValidation, "factory Create is required")
	}
	if c.Size < 0 {
		return errors.New(errors.ErrorTypeValidation, "initial size must not be negative").
			WithDetail("size", c.Size)
	}
	if c.Factory.Access == nil {
		r := reflect.TypeOf((*R)(nil)).Elem()
		v := reflect.TypeOf((*V)(nil)).Elem()
		if r != v {
			return errors.New(errors.ErrorTypeValidation,
				"factory Access is required when resource and view types differ").
				WithDetail("resource_type", r.String()).
				WithDetail("view_type", v.String())
		}
	}
	return nil
}
