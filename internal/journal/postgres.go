package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokenradar/internal/observability"
)

const pgErrUniqueViolation = "23505"

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a Postgres connection pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

// PostgresAlertStore implements AlertStore using PostgreSQL.
type PostgresAlertStore struct {
	pool *Pool
}

// NewPostgresAlertStore creates a new PostgresAlertStore.
func NewPostgresAlertStore(pool *Pool) *PostgresAlertStore {
	return &PostgresAlertStore{pool: pool}
}

var _ AlertStore = (*PostgresAlertStore)(nil)

// Insert journals one sent alert. The (mint, sent day) pair is unique;
// re-inserting returns ErrDuplicateKey.
func (s *PostgresAlertStore) Insert(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO token_alerts (
			mint, name, symbol, narrative,
			composite, safety, timing, momentum, relevance,
			phase, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		a.Mint, a.Name, a.Symbol, a.Narrative,
		a.Composite, a.Safety, a.Timing, a.Momentum, a.Relevance,
		a.Phase, a.SentAt,
	)
	observability.RecordDBQuery("postgres", "insert_alert", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// Recent returns the latest alerts, newest first.
func (s *PostgresAlertStore) Recent(ctx context.Context, limit int) ([]*Alert, error) {
	query := `
		SELECT mint, name, symbol, narrative,
		       composite, safety, timing, momentum, relevance,
		       phase, sent_at
		FROM token_alerts
		ORDER BY sent_at DESC
		LIMIT $1
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, limit)
	observability.RecordDBQuery("postgres", "recent_alerts", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(
			&a.Mint, &a.Name, &a.Symbol, &a.Narrative,
			&a.Composite, &a.Safety, &a.Timing, &a.Momentum, &a.Relevance,
			&a.Phase, &a.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}
