package benchmark

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PremiumOption is one catalog entry: a named organisation feature that
// justifies a flat uplift on the recommended range.
type PremiumOption struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Uplift float64 `json:"uplift"`
}

// AdjustedRange is the premium-adjusted recommendation derived from P25,
// Median and P75.
type AdjustedRange struct {
	Min         float64 `json:"min"`
	Recommended float64 `json:"recommended"`
	Max         float64 `json:"max"`
}

// Rounding is the granularity an adjusted range is rounded to, expressed as
// the decimal place passed to decimal.Round.
type Rounding int32

const (
	// RoundToHundred is used for monthly salaries.
	RoundToHundred Rounding = -2
	// RoundToTen is used for hourly rates.
	RoundToTen Rounding = -1
)

func (r Rounding) apply(d decimal.Decimal) float64 {
	return d.Round(int32(r)).InexactFloat64()
}

// EmploymentType selects the pay unit of a benchmark.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentContract EmploymentType = "CONTRACT"
	EmploymentPartTime EmploymentType = "PART_TIME"
)

// ParseEmploymentType converts a raw string to an EmploymentType, returning
// an error for unknown values.
func ParseEmploymentType(s string) (EmploymentType, error) {
	et := EmploymentType(s)
	switch et {
	case EmploymentFullTime, EmploymentContract, EmploymentPartTime:
		return et, nil
	}
	return "", fmt.Errorf("unknown employment type %q", s)
}

// RoundingFor returns the rounding granularity for an employment type:
// part-time benchmarks are hourly rates, everything else is monthly.
func RoundingFor(et EmploymentType) Rounding {
	if et == EmploymentPartTime {
		return RoundToTen
	}
	return RoundToHundred
}

// Adjuster applies summed premium uplifts from a fixed catalog.
// It is immutable after construction and safe for concurrent use.
type Adjuster struct {
	options []PremiumOption
	uplifts map[string]decimal.Decimal
}

// NewAdjuster builds an Adjuster over the given catalog. Later entries with a
// duplicate ID replace earlier ones.
func NewAdjuster(options []PremiumOption) *Adjuster {
	a := &Adjuster{
		options: append([]PremiumOption(nil), options...),
		uplifts: make(map[string]decimal.Decimal, len(options)),
	}
	for _, o := range options {
		a.uplifts[o.ID] = decimal.NewFromFloat(o.Uplift)
	}
	return a
}

// Options returns a copy of the catalog in its configured order.
func (a *Adjuster) Options() []PremiumOption {
	return append([]PremiumOption(nil), a.options...)
}

// TotalRate sums the uplifts of the enabled ids. Unknown ids are ignored and
// each id counts once.
func (a *Adjuster) TotalRate(enabled []string) decimal.Decimal {
	total := decimal.Zero
	seen := make(map[string]struct{}, len(enabled))
	for _, id := range enabled {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := a.uplifts[id]; ok {
			total = total.Add(u)
		}
	}
	return total
}

// AdjustedRange multiplies P25, Median and P75 by 1 + TotalRate(enabled) and
// rounds each to the given granularity.
func (a *Adjuster) AdjustedRange(s SalarySummary, enabled []string, r Rounding) AdjustedRange {
	multiplier := decimal.NewFromInt(1).Add(a.TotalRate(enabled))
	scale := func(v float64) float64 {
		return r.apply(decimal.NewFromFloat(v).Mul(multiplier))
	}
	return AdjustedRange{
		Min:         scale(s.P25),
		Recommended: scale(s.Median),
		Max:         scale(s.P75),
	}
}
