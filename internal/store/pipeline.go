package store

import (
	"context"
	"fmt"
	"time"

	"jobmate/insights-service/internal/funnel"
)

// PipelineStore reads applicants and their stage history.
type PipelineStore struct {
	q Querier
}

func NewPipelineStore(q Querier) *PipelineStore {
	return &PipelineStore{q: q}
}

// historyRow is one applicant joined with at most one history entry.
type historyRow struct {
	ApplicantID string
	Current     string
	From        *string
	To          *string
	ChangedAt   *time.Time
}

// Entities returns the organisation's applicants, each with its history
// ordered most recent first.
func (s *PipelineStore) Entities(ctx context.Context, orgID string) ([]funnel.Entity, error) {
	rows, err := s.q.Query(ctx,
		`SELECT a.id, a.current_stage::text, h.from_stage::text, h.to_stage::text, h.changed_at
		 FROM applicants a
		 LEFT JOIN applicant_stage_history h ON h.applicant_id = a.id
		 WHERE a.organization_id = $1
		 ORDER BY a.created_at, a.id, h.changed_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("entities query: %w", err)
	}
	defer rows.Close()

	var out []historyRow
	for rows.Next() {
		var r historyRow
		if err := rows.Scan(&r.ApplicantID, &r.Current, &r.From, &r.To, &r.ChangedAt); err != nil {
			return nil, fmt.Errorf("entities scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entities rows: %w", err)
	}
	return groupEntities(out)
}

// groupEntities folds joined rows, ordered by applicant, into entities.
// Unknown stage values are reported rather than silently counted.
func groupEntities(rows []historyRow) ([]funnel.Entity, error) {
	out := make([]funnel.Entity, 0)
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].ID != r.ApplicantID {
			cur, err := funnel.ParseStage(r.Current)
			if err != nil {
				return nil, fmt.Errorf("applicant %s: %w", r.ApplicantID, err)
			}
			out = append(out, funnel.Entity{ID: r.ApplicantID, Current: cur, History: make([]funnel.HistoryEntry, 0)})
		}
		if r.To == nil {
			continue
		}

		to, err := funnel.ParseStage(*r.To)
		if err != nil {
			return nil, fmt.Errorf("applicant %s history: %w", r.ApplicantID, err)
		}
		entry := funnel.HistoryEntry{To: to}
		if r.From != nil {
			from, err := funnel.ParseStage(*r.From)
			if err != nil {
				return nil, fmt.Errorf("applicant %s history: %w", r.ApplicantID, err)
			}
			entry.From = &from
		}
		if r.ChangedAt != nil {
			entry.ChangedAt = *r.ChangedAt
		}

		last := &out[len(out)-1]
		last.History = append(last.History, entry)
	}
	return out, nil
}
