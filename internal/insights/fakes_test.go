package insights_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobmate/insights-service/internal/benchmark"
	"jobmate/insights-service/internal/config"
	"jobmate/insights-service/internal/funnel"
	"jobmate/insights-service/internal/insights"
	"jobmate/insights-service/internal/scorecard"
	"jobmate/insights-service/internal/store"
)

const (
	orgID        = "2f6c1f3e-8d0a-4c55-9b43-0b8f3c2a7e11"
	otherOrgID   = "5b0d7c44-1a2e-4f3b-8c6d-9e7f0a1b2c3d"
	brokenOrgID  = "9c8b7a65-4321-4fed-8cba-0123456789ab"
	competitorID = "7a1e2b3c-4d5e-4f60-8a7b-1c2d3e4f5a6b"
	farAwayID    = "0e9d8c7b-6a59-4483-a221-0f1e2d3c4b5a"
)

var nurseMonthly = benchmark.SalarySummary{
	Min: 200000, P25: 260000, Median: 300000, P75: 340000, Max: 400000, SampleSize: 42,
}

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

type fakeBenchmarks struct {
	sum benchmark.SalarySummary
	err error

	gotRegion, gotRole string
	gotType            benchmark.EmploymentType
}

func (f *fakeBenchmarks) Lookup(_ context.Context, region, role string, et benchmark.EmploymentType) (benchmark.SalarySummary, error) {
	f.gotRegion, f.gotRole, f.gotType = region, role, et
	return f.sum, f.err
}

type fakeOrgs struct {
	org         scorecard.Organization
	orgErr      error
	competitors []scorecard.Competitor
	ids         []string
}

func (f *fakeOrgs) Organization(_ context.Context, id string) (scorecard.Organization, error) {
	if f.orgErr != nil {
		return scorecard.Organization{}, f.orgErr
	}
	if id != f.org.ID {
		return scorecard.Organization{}, fmt.Errorf("organization %s: %w", id, store.ErrNotFound)
	}
	return f.org, nil
}

func (f *fakeOrgs) Competitors(context.Context, string) ([]scorecard.Competitor, error) {
	return f.competitors, nil
}

func (f *fakeOrgs) OrganizationIDs(context.Context) ([]string, error) {
	return f.ids, nil
}

type fakePipeline struct {
	mu       sync.Mutex
	entities map[string][]funnel.Entity
	errs     map[string]error
	calls    int
}

func (f *fakePipeline) Entities(_ context.Context, id string) ([]funnel.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.entities[id], nil
}

// memCache stores JSON like the Redis cache does.
type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

type published struct {
	Channel string
	Payload map[string]any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, channel string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{Channel: channel, Payload: payload.(map[string]any)})
	return nil
}

type fakeRecorder struct {
	mu        sync.Mutex
	hits      int
	misses    int
	refreshed map[string]int
	failed    map[string]int
}

func (r *fakeRecorder) FunnelRefreshed(view string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed[view]++
		return
	}
	r.refreshed[view]++
}

func (r *fakeRecorder) FunnelCacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

type fixture struct {
	svc        *insights.Service
	benchmarks *fakeBenchmarks
	orgs       *fakeOrgs
	pipeline   *fakePipeline
	cache      *memCache
	events     *fakeEvents
	metrics    *fakeRecorder
}

// pipelineEntities: one applicant at INTERVIEW_1, one rejected after
// SCREENING, one still NEW.
func pipelineEntities() []funnel.Entity {
	screening := funnel.StageScreening
	newStage := funnel.StageNew
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return []funnel.Entity{
		{ID: "a", Current: funnel.StageInterview1},
		{
			ID:      "b",
			Current: funnel.StageRejected,
			History: []funnel.HistoryEntry{
				{From: &screening, To: funnel.StageRejected, ChangedAt: at.Add(48 * time.Hour)},
				{From: &newStage, To: funnel.StageScreening, ChangedAt: at.Add(24 * time.Hour)},
				{To: funnel.StageNew, ChangedAt: at},
			},
		},
		{ID: "c", Current: funnel.StageNew},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		benchmarks: &fakeBenchmarks{sum: nurseMonthly},
		orgs: &fakeOrgs{
			org: scorecard.Organization{
				ID:       orgID,
				Name:     "ひかり病院",
				Benefits: str("社会保険完備, 交通費支給, 退職金制度, 住宅手当, 新人研修"),
				Holidays: str("年間休日120日"),
				Positions: []scorecard.Position{
					{ID: "p1", SalaryMin: num(250000), SalaryMax: num(310000)},
					{ID: "p2", SalaryMin: num(270000), SalaryMax: num(330000)},
				},
			},
			competitors: []scorecard.Competitor{
				{
					ID:         competitorID,
					Name:       "さくら病院",
					DistanceKm: num(3.2),
					Conditions: []scorecard.Condition{
						{SalaryMin: num(220000), SalaryMax: num(260000), Benefits: str("社会保険完備、育休あり"), Holidays: str("年間休日105日")},
						{HourlyRate: num(1400), Benefits: str("社会保険完備、育休あり")},
					},
				},
				{
					ID:         farAwayID,
					Name:       "みどりクリニック",
					DistanceKm: num(12),
					Conditions: []scorecard.Condition{{SalaryMin: num(320000), SalaryMax: num(360000)}},
				},
			},
			ids: []string{orgID, otherOrgID},
		},
		pipeline: &fakePipeline{
			entities: map[string][]funnel.Entity{orgID: pipelineEntities()},
			errs:     map[string]error{},
		},
		cache:   newMemCache(),
		events:  &fakeEvents{},
		metrics: &fakeRecorder{refreshed: map[string]int{}, failed: map[string]int{}},
	}

	svc, err := insights.NewService(insights.Deps{
		Benchmarks:    f.benchmarks,
		Organizations: f.orgs,
		Pipeline:      f.pipeline,
		Cache:         f.cache,
		Events:        f.events,
		Metrics:       f.metrics,
	}, config.DefaultCatalog(), time.Hour)
	require.NoError(t, err)
	f.svc = svc
	return f
}
