package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork is returned when a remote backend cannot be reached.
var ErrNetwork = errors.New("network error")

// transientError marks a backend failure that a later attempt may not hit.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

func isTransient(err error) bool {
	var te transientError
	return errors.As(err, &te)
}

// backoff is the delay before the second connection attempt. Later delays
// double.
var backoff = time.Second

const connectAttempts = 3

// connectWithRetry calls connect until it succeeds, fails permanently, or
// connectAttempts transient failures have occurred.
func connectWithRetry(ctx context.Context, connect func() error) error {
	delay := backoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = connect(); err == nil || !isTransient(err) || attempt == connectAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
