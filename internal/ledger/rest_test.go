package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"codex-ledger/internal/domain"
	"codex-ledger/internal/fetch"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type captured struct {
	method string
	url    string
	header http.Header
	body   string
}

func newTestStore(status int, respBody string, calls *[]captured) *RESTStore {
	client := fetch.New(
		fetch.WithMaxRetries(0),
		fetch.WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			*calls = append(*calls, captured{
				method: req.Method,
				url:    req.URL.String(),
				header: req.Header.Clone(),
				body:   string(body),
			})
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(respBody)),
				Header:     make(http.Header),
			}, nil
		})}),
	)
	return NewRESTStore(testTracer, client, "https://project.supabase.co/", "service-key")
}

func assertAuth(t *testing.T, h http.Header) {
	t.Helper()
	if h.Get("Authorization") != "Bearer service-key" {
		t.Errorf("unexpected Authorization header: %q", h.Get("Authorization"))
	}
	if h.Get("apikey") != "service-key" {
		t.Errorf("unexpected apikey header: %q", h.Get("apikey"))
	}
}

func TestRESTStoreInsert(t *testing.T) {
	var calls []captured
	store := newTestStore(http.StatusCreated,
		`[{"id":7,"user_input":"q","ai_mode":"oracle","ai_response":"r","codex_hash":"abc","timestamp":"2025-01-01T00:00:00.000Z","verified":false}]`,
		&calls)

	rec := &domain.LedgerRecord{
		UserInput:  "q",
		AIMode:     domain.ModeOracle,
		AIResponse: "r",
		CodexHash:  "abc",
		Timestamp:  "2025-01-01T00:00:00.000Z",
	}
	got, err := store.Insert(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "7" || got.CodexHash != "abc" {
		t.Fatalf("unexpected row: %+v", got)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	c := calls[0]
	if c.method != http.MethodPost || c.url != "https://project.supabase.co/rest/v1/codex_entries" {
		t.Fatalf("unexpected request: %s %s", c.method, c.url)
	}
	assertAuth(t, c.header)
	if c.header.Get("Prefer") != "return=representation" || c.header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected headers: %v", c.header)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(c.body), &sent); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if _, ok := sent["id"]; ok {
		t.Fatal("id must be assigned by the store")
	}
	if sent["verified"] != false || sent["ai_mode"] != "oracle" || sent["codex_hash"] != "abc" {
		t.Fatalf("unexpected body: %s", c.body)
	}
}

func TestRESTStoreInsertFailure(t *testing.T) {
	var calls []captured
	store := newTestStore(http.StatusConflict, `{"message":"duplicate key value"}`, &calls)

	_, err := store.Insert(context.Background(), &domain.LedgerRecord{Timestamp: "t"})
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if storeErr.StatusCode != http.StatusConflict || storeErr.Op != "insert" {
		t.Fatalf("unexpected store error: %+v", storeErr)
	}
	if err.Error() != `{"message":"duplicate key value"}` {
		t.Fatalf("expected store body as message, got %q", err.Error())
	}
	if len(calls) != 1 {
		t.Fatalf("store calls must not be retried, got %d", len(calls))
	}
}

func TestRESTStoreInsertEmptyRepresentation(t *testing.T) {
	var calls []captured
	store := newTestStore(http.StatusCreated, `[]`, &calls)

	got, err := store.Insert(context.Background(), &domain.LedgerRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil row, got %+v", got)
	}
}

func TestRESTStoreFindByHash(t *testing.T) {
	var calls []captured
	store := newTestStore(http.StatusOK,
		`[{"id":"9b2f","ai_mode":"signal","codex_hash":"deadbeef","timestamp":"2025-01-01T00:00:00.000Z","verified":false}]`,
		&calls)

	got, err := store.FindByHash(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "9b2f" || got.AIMode != domain.ModeSignal {
		t.Fatalf("unexpected record: %+v", got)
	}

	c := calls[0]
	if c.method != http.MethodGet {
		t.Fatalf("expected GET, got %s", c.method)
	}
	if c.url != "https://project.supabase.co/rest/v1/codex_entries?codex_hash=eq.deadbeef&select=*" {
		t.Fatalf("unexpected url: %s", c.url)
	}
	assertAuth(t, c.header)
}

func TestRESTStoreFindByHashEscapesInput(t *testing.T) {
	var calls []captured
	store := newTestStore(http.StatusOK, `[]`, &calls)

	got, err := store.FindByHash(context.Background(), "x&verified=eq.true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no record, got %+v", got)
	}
	if strings.Contains(calls[0].url, "&verified=") {
		t.Fatalf("hash must be escaped in the filter: %s", calls[0].url)
	}
}

func TestRESTStoreFindByHashFailure(t *testing.T) {
	var calls []captured
	store := newTestStore(http.StatusUnauthorized, `Invalid API key`, &calls)

	_, err := store.FindByHash(context.Background(), "abc")
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "find" {
		t.Fatalf("expected find StoreError, got %v", err)
	}
}

func TestRESTStoreMarkVerified(t *testing.T) {
	var calls []captured
	store := newTestStore(http.StatusOK, `[]`, &calls)

	if err := store.MarkVerified(context.Background(), "7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := calls[0]
	if c.method != http.MethodPatch || c.url != "https://project.supabase.co/rest/v1/codex_entries?id=eq.7" {
		t.Fatalf("unexpected request: %s %s", c.method, c.url)
	}
	if c.body != `{"verified":true}` {
		t.Fatalf("unexpected body: %s", c.body)
	}
	assertAuth(t, c.header)

	store = newTestStore(http.StatusInternalServerError, "", &calls)
	err := store.MarkVerified(context.Background(), "7")
	if err == nil || err.Error() != "mark_verified failed with status 500" {
		t.Fatalf("expected status error, got %v", err)
	}
}
