package test_seeder

import (
	"context"
	"fmt"

	"everypoll/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TestSeeder struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) TestSeeder {
	return TestSeeder{pool: pool}
}

// EnsureSchema creates the tables if the test database is empty.
func (ts TestSeeder) EnsureSchema(ctx context.Context) {
	if err := postgres.CreateSchema(ctx, ts.pool); err != nil {
		panic(fmt.Sprintf("Seeder.EnsureSchema failed: %v", err))
	}
}

func (ts TestSeeder) TruncateTables(ctx context.Context) {
	tables := []string{
		"poll_outbox",
		"poll_relationships",
		"votes",
		"polls",
	}

	for _, table := range tables {
		_, err := ts.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			panic(fmt.Sprintf("Failed to truncate %s: %v", table, err))
		}
	}
}
