// Package scorecard rates the caller's organisation and one competitor on six
// 1–5 axes for a radar comparison. Every axis has a neutral default, so
// scoring never fails; deciding who "wins" is left to presentation.
package scorecard

import (
	"github.com/ecodeclub/ekit/slice"
)

// Axis names one radar dimension.
type Axis string

const (
	AxisSalary          Axis = "salary"
	AxisHolidays        Axis = "holidays"
	AxisBenefits        Axis = "benefits"
	AxisAccess          Axis = "access"
	AxisEducation       Axis = "education"
	AxisWorkLifeBalance Axis = "workLifeBalance"
)

// Axes lists the radar dimensions in display order.
var Axes = []Axis{AxisSalary, AxisHolidays, AxisBenefits, AxisAccess, AxisEducation, AxisWorkLifeBalance}

const neutralScore = 3

// Scores holds one side's six axis scores.
type Scores struct {
	Salary          int `json:"salary"`
	Holidays        int `json:"holidays"`
	Benefits        int `json:"benefits"`
	Access          int `json:"access"`
	Education       int `json:"education"`
	WorkLifeBalance int `json:"workLifeBalance"`
}

// Get returns the score for one axis, or 0 for an unknown axis.
func (s Scores) Get(a Axis) int {
	switch a {
	case AxisSalary:
		return s.Salary
	case AxisHolidays:
		return s.Holidays
	case AxisBenefits:
		return s.Benefits
	case AxisAccess:
		return s.Access
	case AxisEducation:
		return s.Education
	case AxisWorkLifeBalance:
		return s.WorkLifeBalance
	}
	return 0
}

// Result is the radar dataset for one organisation/competitor pair.
type Result struct {
	OwnScores        Scores `json:"ownScores"`
	CompetitorScores Scores `json:"competitorScores"`
}

// RadarPoint pairs both sides' scores on one axis.
type RadarPoint struct {
	Axis       Axis `json:"axis"`
	Own        int  `json:"own"`
	Competitor int  `json:"competitor"`
}

// Radar returns the six score pairs in Axes order.
func (r Result) Radar() []RadarPoint {
	return slice.Map(Axes, func(_ int, a Axis) RadarPoint {
		return RadarPoint{Axis: a, Own: r.OwnScores.Get(a), Competitor: r.CompetitorScores.Get(a)}
	})
}

// Side is the already-fetched data one side is scored on.
type Side struct {
	// Midpoints are the salary-range midpoints of the side's active
	// positions or advertised conditions.
	Midpoints []float64
	// Benefits and Holidays are the side's combined free texts.
	Benefits *string
	Holidays *string
	// DistanceKm is the commute distance to a competitor; nil on the own side.
	DistanceKm *float64
}

// Keywords are the term lists matched against benefits text.
type Keywords struct {
	Education       []string
	WorkLifeBalance []string
}

// Scorer scores sides against injected keyword lists.
// It is immutable after construction and safe for concurrent use.
type Scorer struct {
	education       []string
	workLifeBalance []string
}

// NewScorer returns a Scorer over copies of the given keyword lists.
func NewScorer(kw Keywords) *Scorer {
	return &Scorer{
		education:       append([]string(nil), kw.Education...),
		workLifeBalance: append([]string(nil), kw.WorkLifeBalance...),
	}
}

// Score rates both sides. pool is every known salary midpoint: the own
// organisation's active positions plus all competitors' conditions.
func (s *Scorer) Score(own, competitor Side, pool []float64) Result {
	ownScores := s.scoreSide(own, pool)
	ownScores.Access = neutralScore

	compScores := s.scoreSide(competitor, pool)
	compScores.Access = AccessScore(competitor.DistanceKm)

	return Result{OwnScores: ownScores, CompetitorScores: compScores}
}

func (s *Scorer) scoreSide(side Side, pool []float64) Scores {
	return Scores{
		Salary:          SalaryScore(side.Midpoints, pool),
		Holidays:        HolidayScore(ParseHolidays(side.Holidays)),
		Benefits:        BenefitsScore(ParseBenefits(side.Benefits)),
		Education:       s.EducationScore(side.Benefits),
		WorkLifeBalance: s.WorkLifeBalanceScore(side.Benefits),
	}
}

// SalaryScore ranks the average of midpoints within pool. The percentile is
// the share of pool values strictly below the average.
func SalaryScore(midpoints, pool []float64) int {
	if len(midpoints) == 0 || len(pool) == 0 {
		return neutralScore
	}
	var sum float64
	for _, m := range midpoints {
		sum += m
	}
	avg := sum / float64(len(midpoints))

	below := 0
	for _, p := range pool {
		if p < avg {
			below++
		}
	}
	pct := 100 * float64(below) / float64(len(pool))

	switch {
	case pct >= 75:
		return 5
	case pct >= 50:
		return 4
	case pct >= 25:
		return 3
	case pct >= 10:
		return 2
	}
	return 1
}

// HolidayScore maps annual holiday days to a score; absent or unparsed
// text is neutral.
func HolidayScore(h HolidayParse) int {
	if h.Status != TextParsed {
		return neutralScore
	}
	switch {
	case h.Days >= 120:
		return 5
	case h.Days >= 110:
		return 4
	case h.Days >= 100:
		return 3
	case h.Days >= 90:
		return 2
	}
	return 1
}

// BenefitsScore maps the number of benefit items to a score. Absent and
// blank texts both score 1.
func BenefitsScore(b BenefitsParse) int {
	n := len(b.Items)
	switch {
	case n >= 8:
		return 5
	case n >= 6:
		return 4
	case n >= 4:
		return 3
	case n >= 2:
		return 2
	}
	return 1
}

// AccessScore maps a commute distance to a score; unknown distance is neutral.
func AccessScore(distanceKm *float64) int {
	switch {
	case distanceKm == nil:
		return neutralScore
	case *distanceKm <= 5:
		return 4
	case *distanceKm <= 10:
		return 3
	}
	return 2
}

// EducationScore is 4 when benefits mention any training keyword, else 3.
func (s *Scorer) EducationScore(benefits *string) int {
	if containsAny(benefits, s.education) {
		return 4
	}
	return neutralScore
}

// WorkLifeBalanceScore is 4 when benefits mention any work-life-balance
// keyword, else 3.
func (s *Scorer) WorkLifeBalanceScore(benefits *string) int {
	if containsAny(benefits, s.workLifeBalance) {
		return 4
	}
	return neutralScore
}
