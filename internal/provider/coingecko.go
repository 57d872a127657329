package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codex-ledger/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches spot price and 24h change from the CoinGecko free API.
type CoinGeckoProvider struct {
	fetcher Fetcher
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewCoinGeckoProvider creates a provider limited to 8 requests per minute
// (one token every 7.5 seconds) to stay under the free tier.
func NewCoinGeckoProvider(tracer trace.Tracer, fetcher Fetcher, baseURL string) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoProvider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(7500*time.Millisecond), 8),
	}
}

// FetchSolanaPrice returns SOL/USD and its 24h change. Missing fields are 0.
func (p *CoinGeckoProvider) FetchSolanaPrice(ctx context.Context) (*domain.PriceSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-solana-price")
	defer span.End()

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		p.baseURL, domain.SolanaCoinGeckoID)

	body, err := doRequest(ctx, p.fetcher, p.limiter, "coingecko", url)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch solana price: %w", err)
	}

	// Response shape: {"solana": {"usd": 150.12, "usd_24h_change": 2.34}}
	var raw map[string]struct {
		USD       *float64 `json:"usd"`
		Change24h *float64 `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse solana price: %w", err)
	}

	snap := &domain.PriceSnapshot{}
	if data, ok := raw[domain.SolanaCoinGeckoID]; ok {
		if data.USD != nil {
			snap.Price = *data.USD
		}
		if data.Change24h != nil {
			snap.Change24h = *data.Change24h
		}
	}
	span.SetAttributes(
		attribute.Float64("price_usd", snap.Price),
		attribute.Float64("change_24h", snap.Change24h),
	)
	return snap, nil
}
