package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/insights-service/internal/benchmark"
	"jobmate/insights-service/internal/funnel"
	"jobmate/insights-service/internal/scorecard"
)

func ptr[T any](v T) *T { return &v }

func TestGroupEntities(t *testing.T) {
	t1 := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)

	rows := []historyRow{
		{ApplicantID: "a1", Current: "REJECTED", From: ptr("SCREENING"), To: ptr("REJECTED"), ChangedAt: &t2},
		{ApplicantID: "a1", Current: "REJECTED", From: ptr("NEW"), To: ptr("SCREENING"), ChangedAt: &t1},
		{ApplicantID: "a1", Current: "REJECTED", To: ptr("NEW"), ChangedAt: &t1},
		{ApplicantID: "a2", Current: "NEW"},
	}

	got, err := groupEntities(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, funnel.StageRejected, got[0].Current)
	require.Len(t, got[0].History, 3)
	assert.Equal(t, funnel.StageRejected, got[0].History[0].To)
	assert.Equal(t, funnel.StageScreening, *got[0].History[0].From)
	assert.Equal(t, t2, got[0].History[0].ChangedAt)
	assert.Nil(t, got[0].History[2].From)

	assert.Equal(t, "a2", got[1].ID)
	assert.Empty(t, got[1].History)

	f, err := funnel.New(funnel.OrderedStages)
	require.NoError(t, err)
	counts := f.Compute(got)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 1, counts[1].Count)
}

func TestGroupEntities_UnknownStage(t *testing.T) {
	_, err := groupEntities([]historyRow{{ApplicantID: "a1", Current: "HIRED"}})
	assert.ErrorContains(t, err, "applicant a1")

	_, err = groupEntities([]historyRow{{ApplicantID: "a1", Current: "NEW", To: ptr("ARCHIVED")}})
	assert.ErrorContains(t, err, "ARCHIVED")
}

func TestGroupEntities_Empty(t *testing.T) {
	got, err := groupEntities(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroupCompetitors(t *testing.T) {
	rows := []conditionRow{
		{CompetitorID: "c1", Name: "さくら病院", DistanceKm: ptr(3.2), Condition: &scorecard.Condition{ID: "k1", SalaryMin: ptr(220000.0)}},
		{CompetitorID: "c1", Name: "さくら病院", DistanceKm: ptr(3.2), Condition: &scorecard.Condition{ID: "k2", HourlyRate: ptr(1400.0)}},
		{CompetitorID: "c2", Name: "みどりクリニック"},
	}

	got := groupCompetitors(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, 3.2, *got[0].DistanceKm)
	require.Len(t, got[0].Conditions, 2)
	assert.Equal(t, "k2", got[0].Conditions[1].ID)
	assert.Nil(t, got[1].DistanceKm)
	assert.Empty(t, got[1].Conditions)
}

// fakeRow feeds fixed values (or an error) to Scan.
type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: want %d dest, got %d", len(r.vals), len(dest))
	}
	for i, v := range r.vals {
		switch d := dest[i].(type) {
		case *float64:
			*d = v.(float64)
		case *int:
			*d = v.(int)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}

type fakeQuerier struct {
	row  fakeRow
	args []any
}

func (q *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.args = args
	return q.row
}

func TestBenchmarkStore_Lookup(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{vals: []any{200000.0, 250000.0, 280000.0, 320000.0, 400000.0, 58}}}
	s := NewBenchmarkStore(q)

	got, err := s.Lookup(context.Background(), "tokyo", "nurse", benchmark.EmploymentFullTime)
	require.NoError(t, err)
	assert.Equal(t, benchmark.SalarySummary{
		Min: 200000, P25: 250000, Median: 280000, P75: 320000, Max: 400000, SampleSize: 58,
	}, got)
	assert.Equal(t, []any{"tokyo", "nurse", "FULL_TIME"}, q.args)
}

func TestBenchmarkStore_LookupNotFound(t *testing.T) {
	s := NewBenchmarkStore(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})

	_, err := s.Lookup(context.Background(), "tokyo", "nurse", benchmark.EmploymentFullTime)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "tokyo/nurse/FULL_TIME")
}

func TestBenchmarkStore_LookupPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewBenchmarkStore(&fakeQuerier{row: fakeRow{err: boom}})

	_, err := s.Lookup(context.Background(), "tokyo", "nurse", benchmark.EmploymentPartTime)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}
