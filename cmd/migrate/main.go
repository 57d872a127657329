package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"codex-ledger/internal/ledger"
	"codex-ledger/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	cmdUp      = "up"
	cmdDown    = "down"
	cmdVersion = "version"

	usage = "usage: go run ./cmd/migrate [up|down|version] [steps]"
)

var (
	loadEnvFunc = godotenv.Load
	openPool    = pgxpool.New
)

func main() {
	loadEnvFunc()
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Getenv("DATABASE_URL")); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, dsn string) error {
	if len(args) < 1 {
		return errors.New(usage)
	}
	steps, err := parseSteps(args)
	if err != nil {
		return err
	}
	switch args[0] {
	case cmdUp, cmdDown, cmdVersion:
	default:
		return fmt.Errorf("unknown command %q. %s", args[0], usage)
	}
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := openPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	switch args[0] {
	case cmdUp:
		applied, err := ledger.Migrate(ctx, pool)
		if err != nil {
			return fmt.Errorf("apply migrations up: %w", err)
		}
		logger.Info("migrations up complete", zap.Int("applied", applied))
	case cmdDown:
		rolledBack, err := ledger.Rollback(ctx, pool, steps)
		if err != nil {
			return fmt.Errorf("apply migrations down: %w", err)
		}
		logger.Info("migrations down complete", zap.Int("rolled_back", rolledBack))
	case cmdVersion:
		version, name, err := ledger.CurrentVersion(ctx, pool)
		if err != nil {
			return fmt.Errorf("read current version: %w", err)
		}
		if version == 0 {
			logger.Info("no migrations applied")
			return nil
		}
		logger.Info("current version", zap.Int64("version", version), zap.String("name", name))
	}
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) < 2 || args[0] != cmdDown {
		return 1, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid down steps: %q", args[1])
	}
	return n, nil
}
