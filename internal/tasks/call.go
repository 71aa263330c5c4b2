package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listsync/internal/shared"
)

// callWithTimeout runs fn under a per-call deadline. A zero timeout leaves ctx untouched.
//
// When the per-call deadline (not the parent context) expires, the error also wraps [shared.ErrTimeout].
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(cctx)
	if err != nil && ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return v, fmt.Errorf("%w after %s: %w", shared.ErrTimeout, timeout, err)
	}
	return v, err
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}
