package handler

import (
	"context"
	"net/http"

	"codex-ledger/internal/metrics"
	"codex-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// EdgePrefix mirrors the Supabase edge function mount point.
const EdgePrefix = "/functions/v1"

const (
	codeMessageFailed = "MESSAGE_FAILED"
	codeVerifyFailed  = "VERIFY_FAILED"
)

// CodexService is the generate/verify surface the handlers call.
type CodexService interface {
	Generate(ctx context.Context, userInput, mode string) (*service.GenerateResult, error)
	Verify(ctx context.Context, hash string) (*service.VerifyResult, error)
}

type Handler struct {
	tracer trace.Tracer
	codex  CodexService
}

func New(tracer trace.Tracer, codex CodexService) *Handler {
	return &Handler{
		tracer: tracer,
		codex:  codex,
	}
}

// RegisterRoutes installs the request ID and CORS middleware and mounts the
// codex endpoints at the root and under EdgePrefix.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(RequestID(), CORS())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, prefix := range []string{"", EdgePrefix} {
		g := r.Group(prefix)
		g.POST("/message", h.Message)
		g.OPTIONS("/message", h.Preflight)
		g.GET("/verify", h.Verify)
		g.OPTIONS("/verify", h.Preflight)
	}
}

// ErrorResponse is the envelope every failed codex request returns.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DataResponse wraps a successful payload.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

func writeError(c *gin.Context, code string, err error) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{Code: code, Message: err.Error()},
	})
}
