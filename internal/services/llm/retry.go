package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lyricsync/internal/services"
)

// RetryPolicy bounds how often a failed completion is retried and how long
// to wait in between. Sleep replaces the real timer when set.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Sleep     func(time.Duration)
}

func (c *Client) completeWithRetry(ctx context.Context, payload chatRequest, op string) (string, error) {
	attempts := max(c.retry.Attempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, body, err := c.send(ctx, payload)
		if err == nil {
			var content string
			if content, err = contentOf(resp, body, op); err == nil {
				return content, nil
			}
		}
		lastErr = err

		delay, retry := c.retry.next(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		if err := c.retry.wait(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", classify(op, attempts, lastErr)
}

// classify tags a final failure with the matching service marker.
func classify(op string, attempts int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "llm", op, "credentials rejected", err)
		case retryableStatus(statusErr.StatusCode):
			return services.Wrap(services.ErrTransient, "llm", op, "failed after "+strconv.Itoa(attempts)+" attempts", err)
		}
		return services.Wrap(services.ErrExternalTool, "llm", op, "", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "llm", op, "failed after "+strconv.Itoa(attempts)+" attempts", err)
	}
	return services.Wrap(services.ErrExternalTool, "llm", op, "", err)
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// next decides whether err deserves another attempt and how long to wait.
// A Retry-After header wins over the computed backoff.
func (p RetryPolicy) next(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if err == nil || attempt >= maxAttempts || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var emptyErr *emptyContentError
	var statusErr *httpStatusError
	var netErr net.Error
	switch {
	case errors.As(err, &emptyErr):
		return p.backoff(attempt), true
	case errors.As(err, &statusErr):
		if !retryableStatus(statusErr.StatusCode) {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return p.clamp(statusErr.RetryAfter), true
		}
		return p.backoff(attempt), true
	case errors.As(err, &netErr) && netErr.Timeout():
		return p.backoff(attempt), true
	}
	return 0, false
}

// backoff is BaseDelay doubled per previous attempt, clamped to MaxDelay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 1; i < attempt && (p.MaxDelay <= 0 || delay < p.MaxDelay); i++ {
		delay *= 2
	}
	return p.clamp(delay)
}

func (p RetryPolicy) clamp(delay time.Duration) time.Duration {
	switch {
	case delay < 0:
		return 0
	case p.MaxDelay > 0 && delay > p.MaxDelay:
		return p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if p.Sleep != nil {
		p.Sleep(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
