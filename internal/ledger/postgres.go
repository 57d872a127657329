package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"codex-ledger/internal/domain"
	"codex-ledger/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

// PgxPool is the subset of *pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore writes codex records straight to Postgres. The schema lives
// in migrations/ and is applied by Migrate; timestamp is kept as TEXT so the hashed string survives
// the round trip byte for byte.
type PostgresStore struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPostgresStore(pool PgxPool, tracer trace.Tracer) *PostgresStore {
	return &PostgresStore{pool: pool, tracer: tracer}
}

func (s *PostgresStore) Insert(ctx context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error) {
	ctx, span := s.tracer.Start(ctx, "ledger-pg.insert")
	defer span.End()

	row := s.pool.QueryRow(ctx,
		`INSERT INTO codex_entries (user_input, ai_mode, ai_response, codex_hash, timestamp, verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		rec.UserInput, string(rec.AIMode), rec.AIResponse, rec.CodexHash, rec.Timestamp, rec.Verified,
	)

	var id int64
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		metrics.LedgerOps.WithLabelValues("insert", "error").Inc()
		return nil, err
	}
	metrics.LedgerOps.WithLabelValues("insert", "ok").Inc()

	out := *rec
	out.ID = domain.RecordID(strconv.FormatInt(id, 10))
	out.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	return &out, nil
}

func (s *PostgresStore) FindByHash(ctx context.Context, hash string) (*domain.LedgerRecord, error) {
	ctx, span := s.tracer.Start(ctx, "ledger-pg.find-by-hash")
	defer span.End()

	row := s.pool.QueryRow(ctx,
		`SELECT id, user_input, ai_mode, ai_response, codex_hash, timestamp, verified, created_at
		 FROM codex_entries
		 WHERE codex_hash = $1
		 LIMIT 1`,
		hash,
	)

	var (
		rec       domain.LedgerRecord
		id        int64
		mode      string
		createdAt time.Time
	)
	err := row.Scan(&id, &rec.UserInput, &mode, &rec.AIResponse, &rec.CodexHash, &rec.Timestamp, &rec.Verified, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.LedgerOps.WithLabelValues("find", "ok").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.LedgerOps.WithLabelValues("find", "error").Inc()
		return nil, err
	}
	metrics.LedgerOps.WithLabelValues("find", "ok").Inc()

	rec.ID = domain.RecordID(strconv.FormatInt(id, 10))
	rec.AIMode = domain.Mode(mode)
	rec.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	return &rec, nil
}

func (s *PostgresStore) MarkVerified(ctx context.Context, id domain.RecordID) error {
	ctx, span := s.tracer.Start(ctx, "ledger-pg.mark-verified")
	defer span.End()

	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `UPDATE codex_entries SET verified = TRUE WHERE id = $1`, n); err != nil {
		metrics.LedgerOps.WithLabelValues("mark_verified", "error").Inc()
		return err
	}
	metrics.LedgerOps.WithLabelValues("mark_verified", "ok").Inc()
	return nil
}
