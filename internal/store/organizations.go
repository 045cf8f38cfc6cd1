package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobmate/insights-service/internal/scorecard"
)

// OrganizationStore reads an organisation's profile, active positions and
// registered competitors.
type OrganizationStore struct {
	q Querier
}

func NewOrganizationStore(q Querier) *OrganizationStore {
	return &OrganizationStore{q: q}
}

// Organization returns the organisation with its active positions.
func (s *OrganizationStore) Organization(ctx context.Context, orgID string) (scorecard.Organization, error) {
	org := scorecard.Organization{ID: orgID}
	err := s.q.QueryRow(ctx,
		`SELECT name, benefits, holidays FROM organizations WHERE id = $1`,
		orgID,
	).Scan(&org.Name, &org.Benefits, &org.Holidays)
	if err != nil {
		return scorecard.Organization{}, fmt.Errorf("organization %s: %w", orgID, notFound(err))
	}

	rows, err := s.q.Query(ctx,
		`SELECT id, title, salary_min, salary_max, benefits, holidays
		 FROM positions
		 WHERE organization_id = $1 AND is_active
		 ORDER BY created_at`,
		orgID,
	)
	if err != nil {
		return scorecard.Organization{}, fmt.Errorf("positions query: %w", err)
	}
	defer rows.Close()

	org.Positions = make([]scorecard.Position, 0)
	for rows.Next() {
		var p scorecard.Position
		if err := rows.Scan(&p.ID, &p.Title, &p.SalaryMin, &p.SalaryMax, &p.Benefits, &p.Holidays); err != nil {
			return scorecard.Organization{}, fmt.Errorf("positions scan: %w", err)
		}
		org.Positions = append(org.Positions, p)
	}
	if err := rows.Err(); err != nil {
		return scorecard.Organization{}, fmt.Errorf("positions rows: %w", err)
	}
	return org, nil
}

// conditionRow is one competitor joined with at most one of its conditions.
type conditionRow struct {
	CompetitorID string
	Name         string
	DistanceKm   *float64
	Condition    *scorecard.Condition
}

// Competitors returns every competitor registered by the organisation, each
// with all of its conditions.
func (s *OrganizationStore) Competitors(ctx context.Context, orgID string) ([]scorecard.Competitor, error) {
	rows, err := s.q.Query(ctx,
		`SELECT c.id, c.name, c.distance_km,
		        cc.id, COALESCE(cc.role, ''), cc.salary_min, cc.salary_max, cc.hourly_rate,
		        cc.benefits, cc.working_hours, cc.holidays, cc.source_url
		 FROM competitors c
		 LEFT JOIN competitor_conditions cc ON cc.competitor_id = c.id
		 WHERE c.organization_id = $1
		 ORDER BY c.created_at, c.id, cc.created_at`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("competitors query: %w", err)
	}
	defer rows.Close()

	var out []conditionRow
	for rows.Next() {
		var (
			r      conditionRow
			condID *string
			c      scorecard.Condition
		)
		if err := rows.Scan(
			&r.CompetitorID, &r.Name, &r.DistanceKm,
			&condID, &c.Role, &c.SalaryMin, &c.SalaryMax, &c.HourlyRate,
			&c.Benefits, &c.WorkingHours, &c.Holidays, &c.SourceURL,
		); err != nil {
			return nil, fmt.Errorf("competitors scan: %w", err)
		}
		if condID != nil {
			c.ID = *condID
			r.Condition = &c
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("competitors rows: %w", err)
	}
	return groupCompetitors(out), nil
}

// groupCompetitors folds joined rows, ordered by competitor, into one
// Competitor per id. A competitor without conditions yields one row with a
// nil Condition.
func groupCompetitors(rows []conditionRow) []scorecard.Competitor {
	out := make([]scorecard.Competitor, 0)
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].ID != r.CompetitorID {
			out = append(out, scorecard.Competitor{
				ID:         r.CompetitorID,
				Name:       r.Name,
				DistanceKm: r.DistanceKm,
				Conditions: make([]scorecard.Condition, 0),
			})
		}
		if r.Condition != nil {
			last := &out[len(out)-1]
			last.Conditions = append(last.Conditions, *r.Condition)
		}
	}
	return out
}

// OrganizationIDs lists every organisation that has at least one applicant.
func (s *OrganizationStore) OrganizationIDs(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx,
		`SELECT DISTINCT organization_id::text FROM applicants ORDER BY 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("organization ids query: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("organization ids scan: %w", err)
	}
	return ids, nil
}
