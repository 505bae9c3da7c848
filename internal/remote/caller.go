package remote

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/popeskul/wa-inbox/internal/metrics"
)

// Caller applies the retry policy, the rate limiter and the circuit breaker to
// provider operations. Breaker and limiter are optional.
type Caller struct {
	policy  RetryPolicy
	breaker *CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewCaller(policy RetryPolicy, breaker *CircuitBreaker, limiter *rate.Limiter, logger *zap.Logger) *Caller {
	return &Caller{
		policy:  policy,
		breaker: breaker,
		limiter: limiter,
		logger:  logger,
	}
}

// Breaker exposes the circuit breaker for health reporting; it may be nil.
func (c *Caller) Breaker() *CircuitBreaker {
	return c.breaker
}

// Do runs fn under the caller's retry policy.
func Do[T any](ctx context.Context, c *Caller, op string, fn func(context.Context) (T, error)) (T, error) {
	return call(ctx, c, op, c.policy.retryable, fn)
}

// DoMutation runs a non-idempotent fn. It is retried only when the request never
// reached the provider, so a timed-out create is not sent twice.
func DoMutation[T any](ctx context.Context, c *Caller, op string, fn func(context.Context) (T, error)) (T, error) {
	return call(ctx, c, op, IsConnectFailure, fn)
}

func call[T any](ctx context.Context, c *Caller, op string, retryable func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	attempts := 0

	operation := func() (T, error) {
		attempts++
		var zero T

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return zero, backoff.Permanent(err)
			}
		}

		var result T
		attempt := func() error {
			var err error
			result, err = fn(ctx)
			return err
		}

		var err error
		if c.breaker != nil {
			err = c.breaker.Execute(ctx, attempt)
		} else {
			err = attempt()
		}

		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrProviderUnavailable) || !retryable(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}

	notify := func(err error, wait time.Duration) {
		metrics.ProviderRetries.WithLabelValues(op).Inc()
		c.logger.Warn("Transient provider failure, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempts),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	result, err := backoff.RetryNotifyWithData(operation, c.policy.backOff(ctx), notify)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, ErrProviderUnavailable) {
			outcome = "unavailable"
		}
		c.logger.Debug("Provider call failed",
			zap.String("operation", op),
			zap.Int("attempts", attempts),
			zap.Error(err))
	}
	metrics.RecordProviderCall(op, outcome, time.Since(start).Seconds())

	return result, err
}
