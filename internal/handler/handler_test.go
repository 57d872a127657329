package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codex-ledger/internal/domain"
	"codex-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type stubCodex struct {
	generateRes *service.GenerateResult
	generateErr error
	verifyRes   *service.VerifyResult
	verifyErr   error

	gotInput string
	gotMode  string
	gotHash  string
}

func (s *stubCodex) Generate(_ context.Context, userInput, mode string) (*service.GenerateResult, error) {
	s.gotInput, s.gotMode = userInput, mode
	return s.generateRes, s.generateErr
}

func (s *stubCodex) Verify(_ context.Context, hash string) (*service.VerifyResult, error) {
	s.gotHash = hash
	return s.verifyRes, s.verifyErr
}

func newTestRouter(codex CodexService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(trace.NewNoopTracerProvider().Tracer("handler-test"), codex).RegisterRoutes(r)
	return r
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("parse error: %v (body %s)", err, w.Body.String())
	}
	return env
}

func TestMessageSuccess(t *testing.T) {
	price := 150.0
	codex := &stubCodex{generateRes: &service.GenerateResult{
		Response:   "Solana saat ini $150.00",
		CodexHash:  strings.Repeat("a", 64),
		Timestamp:  "2025-01-01T00:00:00.000Z",
		Entry:      &domain.LedgerRecord{ID: "1", AIMode: domain.ModeOracle},
		CryptoData: &domain.CryptoData{Price: price},
	}}
	r := newTestRouter(codex)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(`{"user_input":"hi","mode":"oracle"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if codex.gotInput != "hi" || codex.gotMode != "oracle" {
		t.Fatalf("unexpected service call: %q %q", codex.gotInput, codex.gotMode)
	}

	var body struct {
		Data struct {
			Response   string         `json:"response"`
			CodexHash  string         `json:"codex_hash"`
			Timestamp  string         `json:"timestamp"`
			Entry      map[string]any `json:"entry"`
			CryptoData map[string]any `json:"crypto_data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Data.CodexHash != strings.Repeat("a", 64) || body.Data.Entry["id"] != float64(1) {
		t.Fatalf("unexpected payload: %s", w.Body.String())
	}
	if body.Data.CryptoData["price"] != 150.0 {
		t.Fatalf("unexpected crypto data: %v", body.Data.CryptoData)
	}
}

func TestMessageErrorEnvelope(t *testing.T) {
	codex := &stubCodex{generateErr: service.ErrInvalidMode}
	r := newTestRouter(codex)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(`{"user_input":"hi","mode":"x"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != "MESSAGE_FAILED" {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}
	if env.Error.Message != "Mode tidak valid. Gunakan: oracle, analyzer, atau signal" {
		t.Fatalf("unexpected message: %q", env.Error.Message)
	}
}

func TestMessageMalformedBody(t *testing.T) {
	codex := &stubCodex{}
	r := newTestRouter(codex)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(`{not json`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error == nil || env.Error.Code != "MESSAGE_FAILED" {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}
	if codex.gotMode != "" {
		t.Fatal("service should not be called for a malformed body")
	}
}

func TestVerifySuccess(t *testing.T) {
	valid := true
	codex := &stubCodex{verifyRes: &service.VerifyResult{
		Status:    domain.StatusVerified,
		Message:   "Hash terverifikasi di Codex Ledger",
		Timestamp: "2025-01-01T00:00:00.000Z",
		AIMode:    domain.ModeSignal,
		HashValid: &valid,
	}}
	r := newTestRouter(codex)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/verify?hash=abc123", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if codex.gotHash != "abc123" {
		t.Fatalf("unexpected hash: %q", codex.gotHash)
	}

	var data map[string]any
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if data["status"] != "verified" || data["ai_mode"] != "signal" || data["hash_valid"] != true {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestVerifyInvalidOmitsRecordFields(t *testing.T) {
	codex := &stubCodex{verifyRes: &service.VerifyResult{
		Status:  domain.StatusInvalid,
		Message: "Hash tidak ditemukan di Codex Ledger",
	}}
	r := newTestRouter(codex)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/verify?hash=ff", nil))

	want := `{"data":{"status":"invalid","message":"Hash tidak ditemukan di Codex Ledger"}}`
	if strings.TrimSpace(w.Body.String()) != want {
		t.Fatalf("unexpected body:\n got: %s\nwant: %s", w.Body.String(), want)
	}
}

func TestVerifyErrorEnvelope(t *testing.T) {
	codex := &stubCodex{verifyErr: service.ErrMissingHash}
	r := newTestRouter(codex)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/verify", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != "VERIFY_FAILED" || env.Error.Message != "Hash parameter diperlukan" {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}
}

func TestEdgePrefixRoutes(t *testing.T) {
	codex := &stubCodex{
		generateErr: errors.New("boom"),
		verifyRes:   &service.VerifyResult{Status: domain.StatusInvalid},
	}
	r := newTestRouter(codex)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/functions/v1/verify?hash=ab", nil))
	if w.Code != http.StatusOK || codex.gotHash != "ab" {
		t.Fatalf("edge verify route not mounted: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/functions/v1/message", strings.NewReader(`{}`)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("edge message route not mounted: %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(&stubCodex{})

	for _, path := range []string{"/message", "/verify", "/functions/v1/message"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type, apikey")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("%s: unexpected allow-origin %q", path, got)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "86400" {
			t.Fatalf("%s: unexpected max-age %q", path, got)
		}
		methods := w.Header().Get("Access-Control-Allow-Methods")
		if !strings.Contains(methods, "PATCH") || !strings.Contains(methods, "POST") {
			t.Fatalf("%s: unexpected allow-methods %q", path, methods)
		}
		headers := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
		if !strings.Contains(headers, "x-client-info") || !strings.Contains(headers, "apikey") {
			t.Fatalf("%s: unexpected allow-headers %q", path, headers)
		}
		if w.Body.Len() != 0 {
			t.Fatalf("%s: preflight should have an empty body", path)
		}
	}
}

func TestBareOptions(t *testing.T) {
	r := newTestRouter(&stubCodex{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/verify", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCORSHeadersOnErrors(t *testing.T) {
	r := newTestRouter(&stubCodex{verifyErr: service.ErrStoreNotConfigured})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/verify?hash=ab", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("error responses should carry CORS headers")
	}
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(&stubCodex{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	generated := w.Header().Get(RequestIDHeader)
	if len(generated) != 36 {
		t.Fatalf("expected a generated uuid, got %q", generated)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected caller request id to be echoed, got %q", got)
	}
}

func TestRequestIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Fatalf("expected request id in context, got %q", seen)
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Fatal("expected empty id without middleware")
	}
}

func TestMetricsRoute(t *testing.T) {
	r := newTestRouter(&stubCodex{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
