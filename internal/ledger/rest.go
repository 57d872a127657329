package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"codex-ledger/internal/domain"
	"codex-ledger/internal/fetch"
	"codex-ledger/internal/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Doer is the HTTP surface RESTStore needs.
type Doer interface {
	Do(ctx context.Context, method, url string, body []byte, opts ...fetch.RequestOption) (*fetch.Response, error)
}

// RESTStore talks to a PostgREST endpoint such as Supabase's /rest/v1.
type RESTStore struct {
	client  Doer
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewRESTStore(tracer trace.Tracer, client Doer, baseURL, apiKey string) *RESTStore {
	return &RESTStore{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

func (s *RESTStore) Insert(ctx context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error) {
	ctx, span := s.tracer.Start(ctx, "ledger-rest.insert")
	defer span.End()

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(ctx, http.MethodPost, s.tableURL(""), body,
		s.auth(fetch.WithHeader("Prefer", "return=representation"))...)
	if err != nil {
		metrics.LedgerOps.WithLabelValues("insert", "error").Inc()
		return nil, err
	}
	if !resp.OK() {
		metrics.LedgerOps.WithLabelValues("insert", "error").Inc()
		return nil, &StoreError{Op: "insert", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	metrics.LedgerOps.WithLabelValues("insert", "ok").Inc()

	rows, err := decodeRows(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode inserted row: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	span.SetAttributes(attribute.String("ledger.id", string(rows[0].ID)))
	return &rows[0], nil
}

func (s *RESTStore) FindByHash(ctx context.Context, hash string) (*domain.LedgerRecord, error) {
	ctx, span := s.tracer.Start(ctx, "ledger-rest.find-by-hash")
	defer span.End()

	query := "codex_hash=eq." + url.QueryEscape(hash) + "&select=*"
	resp, err := s.client.Do(ctx, http.MethodGet, s.tableURL(query), nil, s.auth()...)
	if err != nil {
		metrics.LedgerOps.WithLabelValues("find", "error").Inc()
		return nil, err
	}
	if !resp.OK() {
		metrics.LedgerOps.WithLabelValues("find", "error").Inc()
		return nil, &StoreError{Op: "find", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	metrics.LedgerOps.WithLabelValues("find", "ok").Inc()

	rows, err := decodeRows(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *RESTStore) MarkVerified(ctx context.Context, id domain.RecordID) error {
	ctx, span := s.tracer.Start(ctx, "ledger-rest.mark-verified")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.id", string(id)))

	query := "id=eq." + url.QueryEscape(string(id))
	resp, err := s.client.Do(ctx, http.MethodPatch, s.tableURL(query), []byte(`{"verified":true}`),
		s.auth(fetch.WithHeader("Prefer", "return=representation"))...)
	if err != nil {
		metrics.LedgerOps.WithLabelValues("mark_verified", "error").Inc()
		return err
	}
	if !resp.OK() {
		metrics.LedgerOps.WithLabelValues("mark_verified", "error").Inc()
		return &StoreError{Op: "mark_verified", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	metrics.LedgerOps.WithLabelValues("mark_verified", "ok").Inc()
	return nil
}

func (s *RESTStore) tableURL(query string) string {
	u := s.baseURL + "/rest/v1/" + Table
	if query != "" {
		u += "?" + query
	}
	return u
}

func (s *RESTStore) auth(extra ...fetch.RequestOption) []fetch.RequestOption {
	opts := []fetch.RequestOption{
		fetch.WithBearerToken(s.apiKey),
		fetch.WithHeader("apikey", s.apiKey),
	}
	return append(opts, extra...)
}

func decodeRows(body []byte) ([]domain.LedgerRecord, error) {
	var rows []domain.LedgerRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
