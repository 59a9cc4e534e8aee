package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying (bad credentials, rejected
// request and the like).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotConfigured),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		IsPermanent(err):
		return false
	}
	return true
}

type retrying struct {
	Gateway
	retries int
	backoff time.Duration
	logger  zerolog.Logger
}

// WithRetry retries transient Generate failures up to retries extra times,
// sleeping attempt*backoff between attempts. retries <= 0 returns gw as is.
func WithRetry(gw Gateway, retries int, backoff time.Duration, logger zerolog.Logger) Gateway {
	if retries <= 0 {
		return gw
	}
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}
	return &retrying{Gateway: gw, retries: retries, backoff: backoff, logger: logger}
}

func (r *retrying) Generate(ctx context.Context, prompt string, opt Options) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.retries+1; attempt++ {
		out, err := r.Gateway.Generate(ctx, prompt, opt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) || attempt > r.retries {
			break
		}
		wait := time.Duration(attempt) * r.backoff
		r.logger.Warn().Err(err).
			Str("provider", r.Name()).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("gateway call failed, retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return "", lastErr
}
