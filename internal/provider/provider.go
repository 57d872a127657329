package provider

import (
	"context"
	"errors"
	"fmt"

	"codex-ledger/internal/fetch"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the local upstream budget is spent. The call
// fails immediately so the source degrades instead of queueing.
var ErrRateLimited = errors.New("upstream rate limit exceeded")

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Source, e.StatusCode, e.Body)
}

// Fetcher is the resilient GET the providers build on.
type Fetcher interface {
	Get(ctx context.Context, url string, opts ...fetch.RequestOption) (*fetch.Response, error)
}

func doRequest(ctx context.Context, f Fetcher, limiter *rate.Limiter, source, url string) ([]byte, error) {
	if limiter != nil {
		if !limiter.Allow() {
			return nil, fmt.Errorf("%s: %w", source, ErrRateLimited)
		}
	}

	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Source: source, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp.Body, nil
}
