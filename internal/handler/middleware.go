package handler

import (
	"context"
	"net/http"
	"time"

	"codex-ledger/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

type ctxKey struct{}

// CORS allows any origin with the edge function header set. Preflight is
// answered with 200 rather than 204.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"POST", "GET", "OPTIONS", "PUT", "DELETE", "PATCH"},
		AllowHeaders:              []string{"authorization", "x-client-info", "apikey", "content-type"},
		AllowCredentials:          false,
		MaxAge:                    86400 * time.Second,
		OptionsResponseStatusCode: http.StatusOK,
	})
}

// RequestID tags every request with an ID, taken from X-Request-ID when the
// caller sent one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, id))
		c.Next()
	}
}

// RequestIDFromContext returns the ID set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func requestLogger(c *gin.Context) *zap.Logger {
	if id := c.GetString(requestIDKey); id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger.Log
}

// Preflight answers OPTIONS requests that reach the router, which happens
// when no Origin header was sent.
func (h *Handler) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
