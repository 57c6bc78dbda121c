package pgdb

import (
	"context"

	"artbid-api/pkg/postgres"
)

type DiagnosticsRepo struct {
	*postgres.Postgres
}

func NewDiagnosticsRepo(pgdb *postgres.Postgres) *DiagnosticsRepo {
	return &DiagnosticsRepo{pgdb}
}

// Ping makes a full round trip, not only a connection check.
func (r *DiagnosticsRepo) Ping(ctx context.Context) error {
	var one int
	return r.Database.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
