// Package insights contains the business logic of the insights service.
// It is transport-agnostic: used by the gin handler and the gRPC server.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobmate/insights-service/internal/benchmark"
	"jobmate/insights-service/internal/cache"
	"jobmate/insights-service/internal/config"
	"jobmate/insights-service/internal/funnel"
	"jobmate/insights-service/internal/logger"
	"jobmate/insights-service/internal/scorecard"
	"jobmate/insights-service/internal/store"
)

// EventFunnelRefreshed is published after an organisation's funnels are recomputed.
const EventFunnelRefreshed = "EVENT_FUNNEL_REFRESHED"

// DefaultView is the funnel view served when none is requested.
const DefaultView = "dashboard"

const refreshConcurrency = 4

// ─── Providers ───────────────────────────────────────────────────────────────

type BenchmarkProvider interface {
	Lookup(ctx context.Context, region, role string, et benchmark.EmploymentType) (benchmark.SalarySummary, error)
}

type OrganizationProvider interface {
	Organization(ctx context.Context, orgID string) (scorecard.Organization, error)
	Competitors(ctx context.Context, orgID string) ([]scorecard.Competitor, error)
	OrganizationIDs(ctx context.Context) ([]string, error)
}

type PipelineProvider interface {
	Entities(ctx context.Context, orgID string) ([]funnel.Entity, error)
}

type ReportCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Recorder receives funnel cache and refresh outcomes.
type Recorder interface {
	FunnelRefreshed(view string, err error)
	FunnelCacheLookup(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) FunnelRefreshed(string, error) {}
func (nopRecorder) FunnelCacheLookup(bool)        {}

// Deps groups the I/O collaborators of a Service. Metrics may be nil.
type Deps struct {
	Benchmarks    BenchmarkProvider
	Organizations OrganizationProvider
	Pipeline      PipelineProvider
	Cache         ReportCache
	Events        Publisher
	Metrics       Recorder
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service answers benchmark, scorecard and funnel queries.
type Service struct {
	deps     Deps
	adjuster *benchmark.Adjuster
	scorer   *scorecard.Scorer
	views    map[string]*funnel.Funnel
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService builds the calculators from the catalog.
func NewService(deps Deps, cat config.Catalog, cacheTTL time.Duration) (*Service, error) {
	views, err := cat.FunnelViews()
	if err != nil {
		return nil, err
	}
	if _, ok := views[DefaultView]; !ok {
		return nil, fmt.Errorf("catalog has no %q funnel view", DefaultView)
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	return &Service{
		deps:     deps,
		adjuster: benchmark.NewAdjuster(cat.PremiumOptions()),
		scorer:   scorecard.NewScorer(cat.ScorecardKeywords()),
		views:    views,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

// ─── Benchmarks ──────────────────────────────────────────────────────────────

type BenchmarkRequest struct {
	Region         string
	Role           string
	EmploymentType string
	Candidate      *float64
	Premiums       []string
}

type BenchmarkReport struct {
	Region             string                         `json:"region"`
	Role               string                         `json:"role"`
	EmploymentType     benchmark.EmploymentType       `json:"employmentType"`
	Summary            benchmark.SalarySummary        `json:"summary"`
	Buckets            []benchmark.DistributionBucket `json:"buckets"`
	PositionPercentile *float64                       `json:"positionPercentile,omitempty"`
	MarketPosition     *benchmark.MarketPosition      `json:"marketPosition,omitempty"`
	AppliedPremiums    []string                       `json:"appliedPremiums"`
	TotalRate          float64                        `json:"totalRate"`
	AdjustedRange      benchmark.AdjustedRange        `json:"adjustedRange"`
}

// Benchmark returns the market distribution for a (region, role, employment
// type) key, the candidate's position in it when a value is given, and the
// premium-adjusted offer range. An empty employment type means FULL_TIME.
func (s *Service) Benchmark(ctx context.Context, req BenchmarkRequest) (*BenchmarkReport, error) {
	region := strings.TrimSpace(req.Region)
	role := strings.TrimSpace(req.Role)
	if region == "" || role == "" {
		return nil, &ValidationError{Msg: "region and role are required"}
	}
	et := benchmark.EmploymentFullTime
	if req.EmploymentType != "" {
		var err error
		if et, err = benchmark.ParseEmploymentType(req.EmploymentType); err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
	}
	if c := req.Candidate; c != nil && (math.IsNaN(*c) || math.IsInf(*c, 0) || *c < 0) {
		return nil, &ValidationError{Msg: "candidate must be a non-negative number"}
	}

	sum, err := s.deps.Benchmarks.Lookup(ctx, region, role, et)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("benchmark lookup: %w", err)
	}

	applied := s.appliedPremiums(req.Premiums)
	report := &BenchmarkReport{
		Region:          region,
		Role:            role,
		EmploymentType:  et,
		Summary:         sum,
		Buckets:         benchmark.SynthesizeDistribution(sum),
		AppliedPremiums: applied,
		TotalRate:       s.adjuster.TotalRate(applied).InexactFloat64(),
		AdjustedRange:   s.adjuster.AdjustedRange(sum, applied, benchmark.RoundingFor(et)),
	}
	if req.Candidate != nil {
		pct := benchmark.LocatePercentile(*req.Candidate, sum)
		pos := benchmark.ClassifyMarketPosition(*req.Candidate, sum)
		report.PositionPercentile = &pct
		report.MarketPosition = &pos
	}
	return report, nil
}

// appliedPremiums returns the catalog ids present in enabled, in catalog
// order and without duplicates.
func (s *Service) appliedPremiums(enabled []string) []string {
	out := make([]string, 0, len(enabled))
	for _, opt := range s.adjuster.Options() {
		if slices.Contains(enabled, opt.ID) {
			out = append(out, opt.ID)
		}
	}
	return out
}

// Premiums returns the premium catalog.
func (s *Service) Premiums() []benchmark.PremiumOption {
	return s.adjuster.Options()
}

// ─── Scorecard ───────────────────────────────────────────────────────────────

type CompetitorRef struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

type ScorecardReport struct {
	OrganizationID   string                 `json:"organizationId"`
	Competitor       CompetitorRef          `json:"competitor"`
	OwnScores        scorecard.Scores       `json:"ownScores"`
	CompetitorScores scorecard.Scores       `json:"competitorScores"`
	Radar            []scorecard.RadarPoint `json:"radar"`
	PoolSize         int                    `json:"poolSize"`
}

// Scorecard compares the organisation with one of its registered
// competitors on the six scorecard axes.
func (s *Service) Scorecard(ctx context.Context, orgID, competitorID string) (*ScorecardReport, error) {
	if err := validateID("organization id", orgID); err != nil {
		return nil, err
	}
	if err := validateID("competitor id", competitorID); err != nil {
		return nil, err
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{OrgID: orgID, CompetitorID: competitorID})

	var (
		org         scorecard.Organization
		competitors []scorecard.Competitor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		org, err = s.deps.Organizations.Organization(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		competitors, err = s.deps.Organizations.Competitors(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scorecard inputs: %w", err)
	}

	idx := slices.IndexFunc(competitors, func(c scorecard.Competitor) bool { return c.ID == competitorID })
	if idx < 0 {
		return nil, ErrNotFound
	}
	comp := competitors[idx]

	pool := scorecard.SalaryPool(org, competitors)
	res := s.scorer.Score(scorecard.OwnSide(org), scorecard.CompetitorSide(comp), pool)
	slog.DebugContext(ctx, "scorecard computed", "pool", len(pool), "conditions", len(comp.Conditions))

	return &ScorecardReport{
		OrganizationID:   orgID,
		Competitor:       CompetitorRef{ID: comp.ID, Name: comp.Name, DistanceKm: comp.DistanceKm},
		OwnScores:        res.OwnScores,
		CompetitorScores: res.CompetitorScores,
		Radar:            res.Radar(),
		PoolSize:         len(pool),
	}, nil
}

// ─── Funnel ──────────────────────────────────────────────────────────────────

type FunnelReport struct {
	OrganizationID string              `json:"organizationId"`
	View           string              `json:"view"`
	Stages         []funnel.StageCount `json:"stages"`
	GeneratedAt    time.Time           `json:"generatedAt"`
}

// Views returns the configured funnel view names, sorted.
func (s *Service) Views() []string {
	names := make([]string, 0, len(s.views))
	for name := range s.views {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Funnel returns the organisation's funnel for view, from the cache when a
// fresh report exists. An empty view means DefaultView.
func (s *Service) Funnel(ctx context.Context, orgID, view string) (*FunnelReport, error) {
	if err := validateID("organization id", orgID); err != nil {
		return nil, err
	}
	if view == "" {
		view = DefaultView
	}
	f, ok := s.views[view]
	if !ok {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown funnel view %q (known: %s)", view, strings.Join(s.Views(), ", "))}
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{OrgID: orgID, View: view})

	var cached FunnelReport
	hit, err := s.deps.Cache.GetJSON(ctx, cache.FunnelKey(orgID, view), &cached)
	if err != nil {
		slog.WarnContext(ctx, "funnel cache read failed", "err", err)
	}
	s.deps.Metrics.FunnelCacheLookup(hit)
	if hit {
		return &cached, nil
	}

	entities, err := s.deps.Pipeline.Entities(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("funnel entities: %w", err)
	}
	report := s.computeFunnel(orgID, view, f, entities)
	s.storeFunnel(ctx, report)
	return report, nil
}

func (s *Service) computeFunnel(orgID, view string, f *funnel.Funnel, entities []funnel.Entity) *FunnelReport {
	report := &FunnelReport{
		OrganizationID: orgID,
		View:           view,
		Stages:         f.Compute(entities),
		GeneratedAt:    s.now().UTC(),
	}
	s.deps.Metrics.FunnelRefreshed(view, nil)
	return report
}

// storeFunnel caches report. Failures are logged and otherwise ignored.
func (s *Service) storeFunnel(ctx context.Context, report *FunnelReport) {
	key := cache.FunnelKey(report.OrganizationID, report.View)
	if err := s.deps.Cache.SetJSON(ctx, key, report, s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "funnel cache write failed", "err", err)
	}
}

// RefreshFunnels recomputes and caches every view for the organisation,
// then publishes EVENT_FUNNEL_REFRESHED. Reports are returned in view order.
func (s *Service) RefreshFunnels(ctx context.Context, orgID string) ([]*FunnelReport, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{OrgID: orgID})

	entities, err := s.deps.Pipeline.Entities(ctx, orgID)
	if err != nil {
		for _, view := range s.Views() {
			s.deps.Metrics.FunnelRefreshed(view, err)
		}
		return nil, fmt.Errorf("refresh %s: %w", orgID, err)
	}

	views := s.Views()
	reports := make([]*FunnelReport, 0, len(views))
	for _, view := range views {
		report := s.computeFunnel(orgID, view, s.views[view], entities)
		s.storeFunnel(ctx, report)
		reports = append(reports, report)
	}

	event := map[string]any{
		"type":           EventFunnelRefreshed,
		"organizationId": orgID,
		"views":          views,
		"applicants":     len(entities),
	}
	// Non-fatal: the cache already holds the new reports.
	if err := s.deps.Events.Publish(ctx, EventFunnelRefreshed, event); err != nil {
		slog.WarnContext(ctx, "publish EVENT_FUNNEL_REFRESHED failed", "err", err)
	}
	return reports, nil
}

// RefreshAll refreshes every organisation with applicants. One
// organisation's failure does not stop the others; all failures are
// returned joined.
func (s *Service) RefreshAll(ctx context.Context) error {
	ids, err := s.deps.Organizations.OrganizationIDs(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := s.RefreshFunnels(gctx, id); err != nil {
				slog.ErrorContext(gctx, "funnel refresh failed", "org_id", id, "err", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "funnel refresh finished", "organizations", len(ids), "failed", len(errs))
	return errors.Join(errs...)
}

func validateID(name, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Msg: fmt.Sprintf("%s must be a UUID", name)}
	}
	return nil
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when the requested benchmark, organisation or
// competitor does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
