package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed intelligence archive. It is write-only from
// the service's point of view: session state is never reloaded from it.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS honeypot_turns (
	id               uuid PRIMARY KEY,
	conversation_id  text        NOT NULL,
	turn             integer     NOT NULL,
	scam_detected    boolean     NOT NULL,
	matched_keywords text[]      NOT NULL DEFAULT '{}',
	agent_engaged    boolean     NOT NULL,
	duration_seconds bigint      NOT NULL,
	created_at       timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS honeypot_turns_conversation_idx
	ON honeypot_turns (conversation_id, turn);

CREATE TABLE IF NOT EXISTS honeypot_intel (
	id              uuid PRIMARY KEY,
	turn_id         uuid    NOT NULL REFERENCES honeypot_turns (id) ON DELETE CASCADE,
	conversation_id text    NOT NULL,
	category        text    NOT NULL,
	position        integer NOT NULL,
	value           text    NOT NULL
);
CREATE INDEX IF NOT EXISTS honeypot_intel_value_idx
	ON honeypot_intel (category, value);
`

// EnsureSchema creates the archive tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
