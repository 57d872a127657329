//go:build lambda

package main

import (
	"context"

	"codex-ledger/internal/app"
	"codex-ledger/internal/config"
	"codex-ledger/internal/logger"
	"codex-ledger/pkg/tracing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "codex-ledger/docs"
)

var ginLambda *ginadapter.GinLambda

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	gin.SetMode(gin.ReleaseMode)

	cfg := config.Load()
	ctx := context.Background()

	_, tracer, err := tracing.InitTracer(ctx, tracing.Options{Enabled: cfg.TracingEnabled, Endpoint: cfg.OTLPEndpoint})
	if err != nil {
		logger.Error("failed to initialize tracer", zap.Error(err))
		panic(err)
	}

	a, err := app.Build(ctx, cfg, tracer)
	if err != nil {
		logger.Error("failed to build app", zap.Error(err))
		panic(err)
	}
	ginLambda = ginadapter.New(a.Router)
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.Debug("received lambda request",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
	)
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer logger.Sync()
	lambda.Start(Handler)
}
