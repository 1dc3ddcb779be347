package utils

import (
	"context"
	"errors"
	"time"
)

// Returns the provided value, or a default value if the input was zero.
func OrDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	} else {
		return v
	}
}

func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Takes an (error) return and panics if there is an error.
// Helps avoid `if err != nil` in situations where errors are impossible.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Takes a (value, error) return and panics if there is an error.
// Helps avoid `if err != nil` in situations where errors are impossible.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var ErrSleepInterrupted = errors.New("sleep interrupted by context cancellation")

func SleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ErrSleepInterrupted
	case <-time.After(d):
		return nil
	}
}
