package handler

import (
	"net/http"

	"codex-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type MessageRequest struct {
	UserInput string `json:"user_input"`
	Mode      string `json:"mode"`
}

// Message godoc
// @Summary      Generate a codex message
// @Description  Builds an oracle, analyzer or signal message from live Solana market data, hashes it and records it in the codex ledger
// @Tags         codex
// @Accept       json
// @Produce      json
// @Param        request  body      MessageRequest  true  "User input and mode (oracle, analyzer, signal)"
// @Success      200      {object}  DataResponse[service.GenerateResult]
// @Failure      500      {object}  ErrorResponse
// @Router       /message [post]
func (h *Handler) Message(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.message")
	defer span.End()

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLogger(c).Warn("message request body", zap.Error(err))
		writeError(c, codeMessageFailed, err)
		return
	}
	span.SetAttributes(attribute.String("codex.mode", req.Mode))

	res, err := h.codex.Generate(ctx, req.UserInput, req.Mode)
	if err != nil {
		span.RecordError(err)
		requestLogger(c).Error("message API error", zap.Error(err))
		writeError(c, codeMessageFailed, err)
		return
	}

	c.JSON(http.StatusOK, DataResponse[*service.GenerateResult]{Data: res})
}
