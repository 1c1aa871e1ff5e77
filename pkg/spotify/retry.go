package spotify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spotifetch_retries_total",
		Help: "Total number of rate limit retry attempts",
	})

	retryWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spotifetch_retry_wait_seconds",
		Help:    "Server-specified wait duration for rate limit retries",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spotifetch_retry_exhausted_total",
		Help: "Total number of times the rate limit retry ceiling was reached",
	})
)

// DefaultMaxRetries is the ceiling on rate limit retries per logical
// operation.
const DefaultMaxRetries = 10

// WithRetry runs op, transparently retrying 429 Too Many Requests
// responses after the server-specified Retry-After delay, up to
// DefaultMaxRetries attempts.
func WithRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return WithRetryN(ctx, DefaultMaxRetries, op)
}

// WithRetryN is WithRetry with an explicit retry ceiling.
//
// Only a *APIError with status 429 is retried; every other error, and a
// 429 once the ceiling is reached, propagates unchanged. The attempt
// counter is local to this call: concurrent batch elements and
// successive top-level calls never share retry budget.
func WithRetryN[T any](ctx context.Context, maxRetries int, op func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		result, err := op()
		if err == nil {
			if attempt > 0 {
				log.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after rate limit retry")
			}
			return result, nil
		}

		if !IsRateLimited(err) {
			return zero, err
		}

		if attempt >= maxRetries {
			retryExhaustedTotal.Inc()
			log.Warn().
				Int("max_retries", maxRetries).
				Msg("Rate limit retry ceiling reached")
			return zero, err
		}

		var apiErr *APIError
		errors.As(err, &apiErr)

		wait, parseErr := retryAfter(apiErr)
		if parseErr != nil {
			// A 429 without a usable Retry-After is a malformed upstream
			// response and fails the call rather than guessing a delay.
			return zero, parseErr
		}

		retriesTotal.Inc()
		retryWaitSeconds.Observe(wait.Seconds())

		log.Info().
			Dur("wait", wait).
			Int("attempt", attempt+1).
			Msg("Rate limited, waiting before retry")

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(wait):
		}
	}
}

// retryAfter reads the Retry-After header of a 429 response as a whole
// number of seconds.
func retryAfter(apiErr *APIError) (time.Duration, error) {
	value := apiErr.Header.Get("Retry-After")
	if value == "" {
		return 0, fmt.Errorf("rate limited without Retry-After header: %w", apiErr)
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("invalid Retry-After header %q: %w", value, apiErr)
	}

	return time.Duration(seconds) * time.Second, nil
}
