package handler

import (
	"net/http"

	"codex-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Verify godoc
// @Summary      Verify a codex hash
// @Description  Looks up a codex hash in the ledger and marks the matching record as verified
// @Tags         codex
// @Produce      json
// @Param        hash  query     string  true  "Codex hash (64 hex characters)"
// @Success      200   {object}  DataResponse[service.VerifyResult]
// @Failure      500   {object}  ErrorResponse
// @Router       /verify [get]
func (h *Handler) Verify(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.verify")
	defer span.End()

	hash := c.Query("hash")
	span.SetAttributes(attribute.String("codex.hash", hash))

	res, err := h.codex.Verify(ctx, hash)
	if err != nil {
		span.RecordError(err)
		requestLogger(c).Error("verify API error", zap.Error(err))
		writeError(c, codeVerifyFailed, err)
		return
	}

	span.SetAttributes(attribute.String("codex.status", string(res.Status)))
	c.JSON(http.StatusOK, DataResponse[*service.VerifyResult]{Data: res})
}
