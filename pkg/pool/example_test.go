package pool_test

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/pkg/pool"
)

// Example demonstrates the basic borrow-use-return cycle.
func Example() {
	ctx := context.Background()

	var nextID int
	p, err := pool.New(ctx, pool.Config[int, int]{
		Name: "workers",
		Size: 2,
		Factory: pool.Factory[int, int]{
			Create: func(context.Context) (int, error) {
				nextID++
				return nextID, nil
			},
		},
		Logger: zap.NewNop(),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// The oldest idle resource is handed out first.
	borrowed, err := pool.UseValue(ctx, p, func(_ context.Context, id int) (int, error) {
		return id, nil
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("size:", p.Size())
	fmt.Println("idle:", p.Idle())
	fmt.Println("borrowed:", borrowed)

	_ = p.Close(ctx)
	fmt.Println("after close:", p.Size())

	// Output:
	// size: 2
	// idle: 2
	// borrowed: 1
	// after close: 0
}

// ExamplePool_Resize shows eager growth and use-driven shrinkage.
func ExamplePool_Resize() {
	ctx := context.Background()

	var created, disposed int
	p, err := pool.New(ctx, pool.Config[int, int]{
		Name: "handles",
		Size: 4,
		Factory: pool.Factory[int, int]{
			Create: func(context.Context) (int, error) {
				created++
				return created, nil
			},
			Dispose: func(context.Context, int) error {
				disposed++
				return nil
			},
		},
		Logger: zap.NewNop(),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := p.Resize(ctx, 1); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("created:", created)
	fmt.Println("disposed:", disposed)
	fmt.Println("idle:", p.Idle())

	// Output:
	// created: 4
	// disposed: 3
	// idle: 1
}
