package service

import (
	"context"
	"encoding/json"

	"codex-ledger/internal/cache"
	"codex-ledger/internal/domain"
	"codex-ledger/internal/logger"
	"codex-ledger/internal/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	priceCacheKey = "solana_price"
	pairsCacheKey = "solana_pairs"
)

type PriceProvider interface {
	FetchSolanaPrice(ctx context.Context) (*domain.PriceSnapshot, error)
}

type PairsProvider interface {
	FetchPairs(ctx context.Context) ([]byte, error)
}

// MarketService assembles a MarketData snapshot from the price and pairs
// sources. Source failures degrade to absent values and are never returned.
type MarketService struct {
	tracer trace.Tracer
	price  PriceProvider
	pairs  PairsProvider
	cache  cache.Cache
}

func NewMarketService(tracer trace.Tracer, price PriceProvider, pairs PairsProvider, c cache.Cache) *MarketService {
	return &MarketService{
		tracer: tracer,
		price:  price,
		pairs:  pairs,
		cache:  c,
	}
}

// Snapshot fetches both sources concurrently and waits for both to settle.
func (s *MarketService) Snapshot(ctx context.Context) domain.MarketData {
	ctx, span := s.tracer.Start(ctx, "market-service.snapshot")
	defer span.End()

	var (
		price *domain.PriceSnapshot
		pairs domain.PairMetrics
		g     errgroup.Group
	)
	// Neither source cancels the other.
	g.Go(func() (err error) {
		price, err = s.priceSnapshot(ctx)
		return err
	})
	g.Go(func() (err error) {
		pairs, err = s.pairMetrics(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("market.degraded", true))
	}

	md := domain.MarketData{
		Price:       price,
		Pairs:       pairs,
		HasRealData: price != nil,
	}
	span.SetAttributes(attribute.Bool("market.real_data", md.HasRealData))
	return md
}

// priceSnapshot returns nil and the fetch error when the price source fails.
func (s *MarketService) priceSnapshot(ctx context.Context) (*domain.PriceSnapshot, error) {
	if data, ok := s.cacheGet(ctx, priceCacheKey); ok {
		var snap domain.PriceSnapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			return &snap, nil
		}
		logger.Warn("discarding unreadable cached price", zap.String("key", priceCacheKey))
	}

	snap, err := s.price.FetchSolanaPrice(ctx)
	if err != nil {
		metrics.SourceFailures.WithLabelValues("coingecko").Inc()
		logger.Error("fetch solana price", zap.Error(err))
		return nil, err
	}

	if data, err := json.Marshal(snap); err == nil {
		s.cacheSet(ctx, priceCacheKey, data)
	}
	return snap, nil
}

// pairMetrics returns zero metrics and the fetch error when the pairs source
// fails. An undecodable payload degrades to zero metrics without an error.
func (s *MarketService) pairMetrics(ctx context.Context) (domain.PairMetrics, error) {
	data, ok := s.cacheGet(ctx, pairsCacheKey)
	if !ok {
		var err error
		data, err = s.pairs.FetchPairs(ctx)
		if err != nil {
			metrics.SourceFailures.WithLabelValues("dexscreener").Inc()
			logger.Error("fetch solana pairs", zap.Error(err))
			return domain.PairMetrics{}, err
		}
		s.cacheSet(ctx, pairsCacheKey, data)
	}

	var payload domain.PairsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Warn("decode pairs payload", zap.Error(err))
		return domain.PairMetrics{}, nil
	}
	return payload.Metrics(), nil
}

func (s *MarketService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *MarketService) cacheSet(ctx context.Context, key string, value []byte) {
	if s.cache != nil {
		s.cache.Set(ctx, key, value)
	}
}
