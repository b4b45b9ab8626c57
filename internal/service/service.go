package service

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// await waits for an asynchronous store call, giving up when ctx is done.
// The call itself keeps running and may still land later.
func await(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
