package store

import (
	"context"
	"fmt"

	"jobmate/insights-service/internal/benchmark"
)

// BenchmarkStore reads market salary summaries.
type BenchmarkStore struct {
	q Querier
}

func NewBenchmarkStore(q Querier) *BenchmarkStore {
	return &BenchmarkStore{q: q}
}

// Lookup returns the most recently collected summary for the
// (region, role, employment type) key, or ErrNotFound.
func (s *BenchmarkStore) Lookup(ctx context.Context, region, role string, et benchmark.EmploymentType) (benchmark.SalarySummary, error) {
	var sum benchmark.SalarySummary
	err := s.q.QueryRow(ctx,
		`SELECT min_salary, p25, median, p75, max_salary, sample_size
		 FROM salary_benchmarks
		 WHERE region = $1 AND role = $2 AND employment_type = $3
		 ORDER BY collected_at DESC
		 LIMIT 1`,
		region, role, string(et),
	).Scan(&sum.Min, &sum.P25, &sum.Median, &sum.P75, &sum.Max, &sum.SampleSize)
	if err != nil {
		return benchmark.SalarySummary{}, fmt.Errorf("lookup benchmark %s/%s/%s: %w", region, role, et, notFound(err))
	}
	return sum, nil
}
