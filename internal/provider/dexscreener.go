package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codex-ledger/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const dexscreenerBaseURL = "https://api.dexscreener.com"

// DexScreenerProvider fetches trading pairs for the wrapped SOL token.
type DexScreenerProvider struct {
	fetcher Fetcher
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewDexScreenerProvider allows bursts of 10 and refills one call per second.
func NewDexScreenerProvider(tracer trace.Tracer, fetcher Fetcher, baseURL string) *DexScreenerProvider {
	if baseURL == "" {
		baseURL = dexscreenerBaseURL
	}
	return &DexScreenerProvider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// FetchPairs returns the raw token payload. The body is validated as JSON
// but kept verbatim so it can be cached as received.
func (p *DexScreenerProvider) FetchPairs(ctx context.Context) ([]byte, error) {
	ctx, span := p.tracer.Start(ctx, "dexscreener.fetch-pairs")
	defer span.End()

	url := fmt.Sprintf("%s/latest/dex/tokens/%s", p.baseURL, domain.SolanaMint)

	body, err := doRequest(ctx, p.fetcher, p.limiter, "dexscreener", url)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch solana pairs: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("parse solana pairs: invalid JSON")
	}
	return body, nil
}
