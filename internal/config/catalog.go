package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"jobmate/insights-service/internal/benchmark"
	"jobmate/insights-service/internal/funnel"
	"jobmate/insights-service/internal/scorecard"
)

// Premium is one premium catalog entry as written in the catalog file.
type Premium struct {
	ID     string  `yaml:"id"`
	Label  string  `yaml:"label"`
	Uplift float64 `yaml:"uplift"`
}

// Catalog is the static reference data injected into the calculators:
// premium uplifts, scorecard keyword lists and named funnel stage lists.
type Catalog struct {
	Premiums []Premium `yaml:"premiums"`

	Keywords struct {
		Education       []string `yaml:"education"`
		WorkLifeBalance []string `yaml:"work_life_balance"`
	} `yaml:"keywords"`

	Funnels map[string][]string `yaml:"funnels"`
}

// DefaultCatalog returns the built-in catalog used when no CATALOG_PATH is set.
func DefaultCatalog() Catalog {
	var c Catalog
	c.Premiums = []Premium{
		{ID: "station_access", Label: "駅近", Uplift: 0.03},
		{ID: "night_shift", Label: "夜勤あり", Uplift: 0.05},
		{ID: "management", Label: "管理職", Uplift: 0.07},
		{ID: "certification", Label: "資格手当", Uplift: 0.02},
	}
	c.Keywords.Education = []string{"研修", "教育", "資格取得支援", "学会", "セミナー"}
	c.Keywords.WorkLifeBalance = []string{
		"育児休暇", "育休", "介護休暇", "時短", "フレックス", "リモート", "テレワーク", "在宅勤務",
	}
	c.Funnels = map[string][]string{
		"dashboard": {"NEW", "SCREENING", "INTERVIEW_1", "INTERVIEW_2", "OFFER", "ACCEPTED"},
		"report":    {"NEW", "SCREENING", "INTERVIEW_1", "OFFER", "ACCEPTED"},
	}
	return c
}

// LoadCatalog reads a YAML catalog from path, or returns DefaultCatalog when
// path is empty. The result is validated.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate reports every problem in the catalog at once.
func (c Catalog) Validate() error {
	var errs []string

	seen := map[string]bool{}
	for i, p := range c.Premiums {
		if strings.TrimSpace(p.ID) == "" {
			errs = append(errs, fmt.Sprintf("premiums[%d].id is required", i))
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Sprintf("premiums[%d].id %q is duplicated", i, p.ID))
		}
		seen[p.ID] = true
		if p.Uplift < 0 || p.Uplift >= 1 {
			errs = append(errs, fmt.Sprintf("premiums[%d].uplift must be in [0, 1), got %v", i, p.Uplift))
		}
	}

	checkTerms := func(name string, terms []string) {
		for i, t := range terms {
			if strings.TrimSpace(t) == "" {
				errs = append(errs, fmt.Sprintf("%s[%d] cannot be empty", name, i))
			}
		}
	}
	checkTerms("keywords.education", c.Keywords.Education)
	checkTerms("keywords.work_life_balance", c.Keywords.WorkLifeBalance)

	if len(c.Funnels) == 0 {
		errs = append(errs, "funnels must define at least one view")
	}
	for name, stages := range c.Funnels {
		if _, err := funnel.New(toStages(stages)); err != nil {
			errs = append(errs, fmt.Sprintf("funnels.%s: %v", name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("catalog validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// PremiumOptions converts the premium entries for benchmark.NewAdjuster.
func (c Catalog) PremiumOptions() []benchmark.PremiumOption {
	out := make([]benchmark.PremiumOption, 0, len(c.Premiums))
	for _, p := range c.Premiums {
		out = append(out, benchmark.PremiumOption{ID: p.ID, Label: p.Label, Uplift: p.Uplift})
	}
	return out
}

// ScorecardKeywords returns the keyword lists for scorecard.NewScorer.
func (c Catalog) ScorecardKeywords() scorecard.Keywords {
	return scorecard.Keywords{
		Education:       c.Keywords.Education,
		WorkLifeBalance: c.Keywords.WorkLifeBalance,
	}
}

// FunnelViews builds one Funnel per named stage list.
func (c Catalog) FunnelViews() (map[string]*funnel.Funnel, error) {
	views := make(map[string]*funnel.Funnel, len(c.Funnels))
	for name, stages := range c.Funnels {
		f, err := funnel.New(toStages(stages))
		if err != nil {
			return nil, fmt.Errorf("funnel view %s: %w", name, err)
		}
		views[name] = f
	}
	return views, nil
}

func toStages(raw []string) []funnel.Stage {
	out := make([]funnel.Stage, len(raw))
	for i, s := range raw {
		out[i] = funnel.Stage(s)
	}
	return out
}
