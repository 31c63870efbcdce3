// Package errors provides examples of structured error handling in respool.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/respool/pkg/errors"
)

// Example demonstrates basic error creation and wrapping.
func Example() {
	// Create a new error with type
	err := errors.New(errors.ErrorTypeResource, "failed to create resource")

	// Add context details
	err = err.WithDetail("pool", "db_connections").
		WithDetail("target_size", 8)

	// Print the error
	fmt.Println(err.Error())

	// Output:
	// resource: failed to create resource
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	// Simulate an underlying error
	originalErr := io.EOF

	// Wrap the error with context
	err := errors.Wrap(originalErr, errors.ErrorTypeResource, "factory create failed").
		WithDetail("pool", "upstream_conns")

	// Check the error type
	if errors.IsType(err, errors.ErrorTypeResource) {
		fmt.Println("This is a resource error")
	}

	// Access the original error using Go's standard errors.Is
	if originalErr == io.EOF {
		fmt.Println("Original error was EOF")
	}

	// Output:
	// This is a resource error
	// Original error was EOF
}

// ExampleIsType demonstrates checking error types.
func ExampleIsType() {
	// Create errors of different types
	conflictErr := errors.New(errors.ErrorTypeConflict, "resize already in progress")
	valErr := errors.New(errors.ErrorTypeValidation, "negative target size")

	// Wrap an error
	wrappedErr := errors.Wrap(conflictErr, errors.ErrorTypeInternal, "resize failed")

	// Check error types
	fmt.Printf("Is conflict error: %v\n", errors.IsType(conflictErr, errors.ErrorTypeConflict))
	fmt.Printf("Is validation error: %v\n", errors.IsType(valErr, errors.ErrorTypeValidation))

	// IsType reports the outermost type of a wrapped chain
	fmt.Printf("Wrapped error is internal type: %v\n", errors.IsType(wrappedErr, errors.ErrorTypeInternal))
	fmt.Printf("Wrapped error contains conflict type: %v\n", errors.IsType(wrappedErr, errors.ErrorTypeConflict))

	// Output:
	// Is conflict error: true
	// Is validation error: true
	// Wrapped error is internal type: true
	// Wrapped error contains conflict type: false
}

// Example_errorChain shows how to chain multiple error contexts.
func Example_errorChain() {
	// Simulate a chain of operations that can fail
	err := dialUpstream()
	if err != nil {
		// Wrap with additional context at each level
		err = errors.Wrap(err, errors.ErrorTypeResource, "resource creation failed").
			WithDetail("pool", "upstream_conns")

		fmt.Println("Full error chain:", err)
	}

	// Output:
	// Full error chain: resource: resource creation failed: timeout: connection timeout
}

// dialUpstream simulates a connection error inside a factory Create
func dialUpstream() error {
	return errors.New(errors.ErrorTypeTimeout, "connection timeout").
		WithDetail("host", "upstream.example.com")
}
