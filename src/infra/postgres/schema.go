package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateSchema creates every table the service needs. Safe to call on each
// start, it only uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS polls (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL CHECK (length(btrim(question)) > 0),
    description TEXT,
    options TEXT[] NOT NULL CHECK (cardinality(options) BETWEEN 2 AND 10),
    option_votes BIGINT[] NOT NULL,
    total_votes BIGINT NOT NULL DEFAULT 0 CHECK (total_votes >= 0),
    creator_id TEXT NOT NULL,
    is_public BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (cardinality(option_votes) = cardinality(options))
);

CREATE INDEX IF NOT EXISTS idx_polls_created_at_id ON polls (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_polls_creator_id ON polls (creator_id);

CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    selected_option INTEGER NOT NULL CHECK (selected_option >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT votes_poll_voter_key UNIQUE (poll_id, voter_id)
);

CREATE TABLE IF NOT EXISTS poll_relationships (
    id BIGSERIAL PRIMARY KEY,
    source_poll_id TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    target_poll_id TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('related', 'follow-up', 'opposing', 'prerequisite', 'custom')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (source_poll_id <> target_poll_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_relationships_source ON poll_relationships (source_poll_id, id);
CREATE INDEX IF NOT EXISTS idx_poll_relationships_target ON poll_relationships (target_poll_id, id);

CREATE TABLE IF NOT EXISTS poll_outbox (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    poll_id TEXT NOT NULL,
    payload JSONB NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    published_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_poll_outbox_pending ON poll_outbox (occurred_at) WHERE published_at IS NULL;
`
