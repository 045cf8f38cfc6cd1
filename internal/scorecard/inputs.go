package scorecard

import "github.com/ecodeclub/ekit/slice"

// Position is one of the caller organisation's active job positions.
type Position struct {
	ID        string
	Title     string
	SalaryMin *float64
	SalaryMax *float64
	Benefits  *string
	Holidays  *string
}

// Organization is the caller's own organisation with its active positions.
type Organization struct {
	ID        string
	Name      string
	Benefits  *string
	Holidays  *string
	Positions []Position
}

// Condition is one advertised job condition of a competitor.
type Condition struct {
	ID           string
	Role         string
	SalaryMin    *float64
	SalaryMax    *float64
	HourlyRate   *float64
	Benefits     *string
	WorkingHours *string
	Holidays     *string
	SourceURL    *string
}

// Competitor is a registered competing organisation.
type Competitor struct {
	ID         string
	Name       string
	DistanceKm *float64
	Conditions []Condition
}

// Midpoint returns the centre of a salary range, or the single bound that is
// present. ok is false when neither bound is set; hourly-only conditions
// therefore never enter the monthly salary pool.
func Midpoint(lo, hi *float64) (float64, bool) {
	switch {
	case lo != nil && hi != nil:
		return (*lo + *hi) / 2, true
	case lo != nil:
		return *lo, true
	case hi != nil:
		return *hi, true
	}
	return 0, false
}

func positionMidpoints(ps []Position) []float64 {
	var out []float64
	for _, p := range ps {
		if m, ok := Midpoint(p.SalaryMin, p.SalaryMax); ok {
			out = append(out, m)
		}
	}
	return out
}

func conditionMidpoints(cs []Condition) []float64 {
	var out []float64
	for _, c := range cs {
		if m, ok := Midpoint(c.SalaryMin, c.SalaryMax); ok {
			out = append(out, m)
		}
	}
	return out
}

// OwnSide assembles the own organisation's side from its profile and active
// positions.
func OwnSide(org Organization) Side {
	benefits := []*string{org.Benefits}
	holidays := []*string{org.Holidays}
	for _, p := range org.Positions {
		benefits = append(benefits, p.Benefits)
		holidays = append(holidays, p.Holidays)
	}
	return Side{
		Midpoints: positionMidpoints(org.Positions),
		Benefits:  CombineTexts(benefits...),
		Holidays:  CombineTexts(holidays...),
	}
}

// CompetitorSide assembles a competitor's side from its conditions.
func CompetitorSide(c Competitor) Side {
	benefits := slice.Map(c.Conditions, func(_ int, cond Condition) *string { return cond.Benefits })
	holidays := slice.Map(c.Conditions, func(_ int, cond Condition) *string { return cond.Holidays })
	return Side{
		Midpoints:  conditionMidpoints(c.Conditions),
		Benefits:   CombineTexts(benefits...),
		Holidays:   CombineTexts(holidays...),
		DistanceKm: c.DistanceKm,
	}
}

// SalaryPool collects every known midpoint: the own organisation's active
// positions and all competitors' conditions.
func SalaryPool(org Organization, competitors []Competitor) []float64 {
	pool := positionMidpoints(org.Positions)
	for _, c := range competitors {
		pool = append(pool, conditionMidpoints(c.Conditions)...)
	}
	return pool
}
