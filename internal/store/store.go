// Package store holds the read-only PostgreSQL providers the insights
// service computes from. Tables are owned by the other jobmate services:
//
//	salary_benchmarks        region, role, employment_type, five-number summary, sample_size
//	organizations            id, name, benefits, holidays
//	positions                organization_id, title, salary range, benefits, holidays, is_active
//	competitors              organization_id, name, distance_km
//	competitor_conditions    competitor_id, role, salary range, hourly_rate, texts, source_url
//	applicants               organization_id, current_stage
//	applicant_stage_history  applicant_id, from_stage, to_stage, changed_at
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Querier is the subset of *pgxpool.Pool the providers use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
