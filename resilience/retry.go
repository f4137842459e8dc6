package resilience

import (
	"context"
	"time"

	"github.com/victoralfred/goproc/process"
)

// RetrySpawn retries a spawn-like operation, but only while the failure
// is classified retryable: validation rejections and terminated-guard
// errors fail immediately, transient OS failures back off and retry.
func RetrySpawn(ctx context.Context, backoff Backoff, fn func() error) error {
	var lastErr error

	for {
		err := fn()
		if err == nil {
			return nil
		}
		if !process.IsRetryable(err) {
			return err
		}

		lastErr = err
		wait := backoff.Next()
		if wait == 0 {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// OutputWithRetry runs the builder's capture path, retrying transient
// failures with the given backoff.
func OutputWithRetry(ctx context.Context, backoff Backoff, build func() *process.Builder) (*process.CapturedOutput, error) {
	var out *process.CapturedOutput

	err := RetrySpawn(ctx, backoff, func() error {
		var err error
		out, err = build().Output()
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
