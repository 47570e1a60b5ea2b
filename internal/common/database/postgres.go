// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"candidate-evaluation-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// Schema holds the tables used by the evaluation ledger.
const Schema = `
CREATE TABLE IF NOT EXISTS candidate_evaluations (
	id              UUID PRIMARY KEY,
	session_id      TEXT NOT NULL,
	tool            TEXT NOT NULL,
	evaluated_at    TIMESTAMPTZ NOT NULL,
	name            TEXT NOT NULL DEFAULT '',
	email           TEXT NOT NULL,
	role            TEXT NOT NULL DEFAULT '',
	market          TEXT NOT NULL DEFAULT '',
	match_score     INTEGER NOT NULL,
	verdict         TEXT NOT NULL,
	ai_summary      TEXT NOT NULL DEFAULT '',
	tags            TEXT[] NOT NULL DEFAULT '{}',
	cv_link         TEXT NOT NULL DEFAULT '',
	linkedin_search TEXT NOT NULL DEFAULT '',
	shortlist       TEXT NOT NULL DEFAULT 'NO'
);
CREATE INDEX IF NOT EXISTS idx_candidate_evaluations_email ON candidate_evaluations (email, evaluated_at);

CREATE TABLE IF NOT EXISTS audit_log (
	id            BIGSERIAL PRIMARY KEY,
	event_type    TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	details       JSONB NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL
);
`

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pooled PostgreSQL connection. No round trip is made
// until Ping or the first query.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Migrate creates the ledger tables when they do not exist.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
