package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"codex-ledger/internal/codex"
	"codex-ledger/internal/domain"
	"codex-ledger/internal/ledger"
	"codex-ledger/internal/logger"
	"codex-ledger/internal/metrics"
	"codex-ledger/internal/synth"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Error texts are returned to clients unchanged.
var (
	ErrMissingInput       = errors.New("user_input dan mode diperlukan")
	ErrInvalidMode        = errors.New("Mode tidak valid. Gunakan: " + domain.ModeList())
	ErrMissingHash        = errors.New("Hash parameter diperlukan")
	ErrStoreNotConfigured = errors.New("Konfigurasi Supabase tidak ditemukan")
)

const (
	msgHashNotFound = "Hash tidak ditemukan di Codex Ledger"
	msgHashVerified = "Hash terverifikasi di Codex Ledger"
)

type MarketSource interface {
	Snapshot(ctx context.Context) domain.MarketData
}

type GenerateResult struct {
	Response   string               `json:"response"`
	CodexHash  string               `json:"codex_hash"`
	Timestamp  string               `json:"timestamp"`
	Entry      *domain.LedgerRecord `json:"entry"`
	CryptoData *domain.CryptoData   `json:"crypto_data"`
}

type VerifyResult struct {
	Status    domain.VerifyStatus `json:"status"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp,omitempty"`
	AIMode    domain.Mode         `json:"ai_mode,omitempty"`
	// HashValid reports whether the stored hash still commits to the stored
	// fields under the current secret. Only set for verified records.
	HashValid *bool `json:"hash_valid,omitempty"`
}

// CodexService runs the generate and verify flows against the ledger.
type CodexService struct {
	tracer trace.Tracer
	market MarketSource
	store  ledger.Store
	secret string
	now    func() time.Time
	rnd    synth.Rand
}

type CodexOption func(*CodexService)

func WithClock(now func() time.Time) CodexOption {
	return func(s *CodexService) { s.now = now }
}

func WithRand(rnd synth.Rand) CodexOption {
	return func(s *CodexService) { s.rnd = rnd }
}

// NewCodexService builds the service. store may be nil when the ledger is
// not configured; both flows then fail with ErrStoreNotConfigured.
func NewCodexService(tracer trace.Tracer, market MarketSource, store ledger.Store, secret string, opts ...CodexOption) *CodexService {
	s := &CodexService{
		tracer: tracer,
		market: market,
		store:  store,
		secret: codex.Secret(secret),
		now:    time.Now,
		rnd:    synth.DefaultRand,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CodexService) Generate(ctx context.Context, userInput, mode string) (*GenerateResult, error) {
	ctx, span := s.tracer.Start(ctx, "codex-service.generate")
	defer span.End()

	if userInput == "" || mode == "" {
		return nil, ErrMissingInput
	}
	m, ok := domain.ParseMode(mode)
	if !ok {
		return nil, ErrInvalidMode
	}
	span.SetAttributes(attribute.String("codex.mode", m.String()))

	md := s.market.Snapshot(ctx)
	response := synth.Generate(m, md, s.rnd)
	metrics.Generations.WithLabelValues(m.String(), strconv.FormatBool(md.HasRealData)).Inc()

	timestamp := codex.Timestamp(s.now())
	hash := codex.Hash(timestamp, userInput, response, s.secret)

	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}

	entry, err := s.store.Insert(ctx, &domain.LedgerRecord{
		UserInput:  userInput,
		AIMode:     m,
		AIResponse: response,
		CodexHash:  hash,
		Timestamp:  timestamp,
		Verified:   false,
	})
	if err != nil {
		logger.Error("ledger insert failed", zap.Error(err))
		return nil, fmt.Errorf("Gagal menyimpan ke database: %w", err)
	}

	logger.Info("codex entry stored",
		zap.String("mode", m.String()),
		zap.String("codex_hash", hash),
		zap.Bool("real_data", md.HasRealData),
	)

	return &GenerateResult{
		Response:   response,
		CodexHash:  hash,
		Timestamp:  timestamp,
		Entry:      entry,
		CryptoData: md.CryptoData(),
	}, nil
}

func (s *CodexService) Verify(ctx context.Context, hash string) (*VerifyResult, error) {
	ctx, span := s.tracer.Start(ctx, "codex-service.verify")
	defer span.End()

	if hash == "" {
		return nil, ErrMissingHash
	}
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}

	// Nothing but lowercase hex is ever stored, so anything else cannot match.
	if !codex.ValidHash(hash) {
		metrics.Verifications.WithLabelValues(string(domain.StatusInvalid)).Inc()
		return &VerifyResult{Status: domain.StatusInvalid, Message: msgHashNotFound}, nil
	}

	rec, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		logger.Error("ledger query failed", zap.Error(err))
		return nil, fmt.Errorf("Gagal query database: %w", err)
	}
	if rec == nil {
		metrics.Verifications.WithLabelValues(string(domain.StatusInvalid)).Inc()
		return &VerifyResult{Status: domain.StatusInvalid, Message: msgHashNotFound}, nil
	}

	if err := s.store.MarkVerified(ctx, rec.ID); err != nil {
		logger.Warn("failed to update verification status",
			zap.String("id", string(rec.ID)),
			zap.Error(err),
		)
	}

	valid := codex.Matches(rec, s.secret)
	metrics.Verifications.WithLabelValues(string(domain.StatusVerified)).Inc()
	return &VerifyResult{
		Status:    domain.StatusVerified,
		Message:   msgHashVerified,
		Timestamp: rec.Timestamp,
		AIMode:    rec.AIMode,
		HashValid: &valid,
	}, nil
}
