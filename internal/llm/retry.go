package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// RetryBaseDelay is the pause before the single retry.
var RetryBaseDelay = 300 * time.Millisecond

type retrying struct {
	base    Client
	onRetry func(err error)
}

// WithRetry wraps base so a transient failure is retried once. onRetry, if set, is called before the retry.
func WithRetry(base Client, onRetry func(err error)) Client {
	if base == nil {
		return nil
	}
	return retrying{base: base, onRetry: onRetry}
}

func (r retrying) Complete(ctx context.Context, req Request) (string, error) {
	out, err := r.base.Complete(ctx, req)
	if err == nil || !ShouldRetry(err) {
		return out, err
	}
	if r.onRetry != nil {
		r.onRetry(err)
	}

	select {
	case <-time.After(RetryBaseDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return r.base.Complete(ctx, req)
}

// ShouldRetry reports whether err looks transient (timeouts, 5xx, dropped connections).
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, ErrNotImplemented) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "http status 429") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "vertex") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "eof") {
		return true
	}
	return false
}
