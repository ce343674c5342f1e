// Package retry implements the cooperative polling helper spec.md §6
// exposes to plugin implementations, grounded directly on
// aiorchestra.core.utils.retry.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Do polls fn until it returns (true, nil), attempts is exhausted, or ctx is
// canceled. An error from fn whose type is not present in swallow aborts
// immediately. Between attempts it sleeps interval, honoring ctx
// cancellation instead of a bare unconditional sleep.
func Do(ctx context.Context, fn func(ctx context.Context) (bool, error), attempts int, interval time.Duration, swallow ...error) error {
	if attempts < 1 {
		attempts = 1
	}

	for attempts > 0 {
		ok, err := fn(ctx)
		if err != nil {
			if !swallowed(err, swallow) {
				return err
			}
		} else if ok {
			return nil
		}

		attempts--
		if attempts == 0 {
			break
		}

		if interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}

	return errors.New("retry: exiting retry loop")
}

// swallowed reports whether err matches one of the given sentinel/kind
// errors, either by errors.Is or by dynamic type (so callers can pass a
// zero-value instance of a typed error, e.g. &errors.OperationError{} from
// pkg/errors, to
// swallow any error of that kind regardless of field values).
func swallowed(err error, kinds []error) bool {
	for _, k := range kinds {
		if k == nil {
			continue
		}
		if errors.Is(err, k) {
			return true
		}
		if fmt.Sprintf("%T", err) == fmt.Sprintf("%T", k) {
			return true
		}
	}
	return false
}
