// Package benchmark turns a five-number salary summary into the numbers the
// compensation screens show: a synthetic population distribution, the
// percentile position of a candidate salary, its market band and the
// premium-adjusted recommended range.
//
// Everything here is a pure function of its inputs. Summaries are assumed to
// satisfy Min <= P25 <= Median <= P75 <= Max. Inconsistent summaries are not
// detected and produce unspecified (but finite) output.
package benchmark

import "math"

// BucketCount is the number of equal-width buckets in a synthesized distribution.
const BucketCount = 10

// iqrToSigma approximates the interquartile range of a standard normal.
const iqrToSigma = 1.35

// SalarySummary is the five-number summary of a salary distribution for one
// (region, role, employment type) selection. All values share one unit:
// monthly salary or hourly rate.
type SalarySummary struct {
	Min        float64 `json:"min"`
	P25        float64 `json:"p25"`
	Median     float64 `json:"median"`
	P75        float64 `json:"p75"`
	Max        float64 `json:"max"`
	SampleSize int     `json:"sampleSize"`
}

// DistributionBucket is one slice of the synthetic population.
// The three flags only drive presentation colouring; a bucket straddling
// P25 or P75 carries none of them.
type DistributionBucket struct {
	RangeMin               float64 `json:"rangeMin"`
	RangeMax               float64 `json:"rangeMax"`
	PercentageOfPopulation float64 `json:"percentageOfPopulation"`
	IsBelow25              bool    `json:"isBelow25"`
	Is25To75               bool    `json:"is25to75"`
	IsAbove75              bool    `json:"isAbove75"`
}

// MarketPosition classifies a salary against a summary.
type MarketPosition string

const (
	PositionTooLow      MarketPosition = "TOO_LOW"
	PositionFairLow     MarketPosition = "FAIR_LOW"
	PositionFair        MarketPosition = "FAIR"
	PositionCompetitive MarketPosition = "COMPETITIVE"
)

// Analysis is the distribution plus the position of one candidate value.
type Analysis struct {
	Buckets            []DistributionBucket `json:"buckets"`
	PositionPercentile float64              `json:"positionPercentile"`
	MarketPosition     MarketPosition       `json:"marketPosition"`
}

// Analyze bundles SynthesizeDistribution, LocatePercentile and
// ClassifyMarketPosition for a single candidate value.
func Analyze(s SalarySummary, value float64) Analysis {
	return Analysis{
		Buckets:            SynthesizeDistribution(s),
		PositionPercentile: LocatePercentile(value, s),
		MarketPosition:     ClassifyMarketPosition(value, s),
	}
}

// SynthesizeDistribution spreads a Gaussian centred on the median over ten
// equal-width buckets spanning [Min, Max]. Percentages are normalised to 100
// and rounded once to one decimal; the rounding residue is left in place.
func SynthesizeDistribution(s SalarySummary) []DistributionBucket {
	width := (s.Max - s.Min) / BucketCount
	buckets := make([]DistributionBucket, BucketCount)
	for i := range buckets {
		lo := s.Min + float64(i)*width
		hi := s.Min + float64(i+1)*width
		if i == BucketCount-1 {
			hi = s.Max
		}
		buckets[i] = DistributionBucket{
			RangeMin:  lo,
			RangeMax:  hi,
			IsBelow25: hi <= s.P25,
			Is25To75:  lo >= s.P25 && hi <= s.P75,
			IsAbove75: lo >= s.P75,
		}
	}

	densities := make([]float64, BucketCount)
	var total float64
	if sigma := (s.P75 - s.P25) / iqrToSigma; sigma > 0 {
		for i, b := range buckets {
			z := ((b.RangeMin+b.RangeMax)/2 - s.Median) / sigma
			densities[i] = math.Exp(-0.5 * z * z)
			total += densities[i]
		}
	}
	if total == 0 {
		// Degenerate spread: all mass sits in the median's bucket.
		clear(densities)
		densities[medianBucket(s, width)] = 1
		total = 1
	}

	for i := range buckets {
		buckets[i].PercentageOfPopulation = math.Round(densities[i]/total*1000) / 10
	}
	return buckets
}

func medianBucket(s SalarySummary, width float64) int {
	if width <= 0 {
		return 0
	}
	idx := int((s.Median - s.Min) / width)
	return min(max(idx, 0), BucketCount-1)
}

// LocatePercentile maps value onto 0..100 by linear interpolation between the
// anchors (Min,0) (P25,25) (Median,50) (P75,75) (Max,100). The result is
// non-decreasing in value.
func LocatePercentile(value float64, s SalarySummary) float64 {
	switch {
	case value <= s.Min:
		return 0
	case value >= s.Max:
		return 100
	case value == s.Median:
		return 50
	}

	anchors := [...]struct{ v, p float64 }{
		{s.Min, 0}, {s.P25, 25}, {s.Median, 50}, {s.P75, 75}, {s.Max, 100},
	}
	for i := 1; i < len(anchors); i++ {
		hi := anchors[i]
		if value > hi.v {
			continue
		}
		lo := anchors[i-1]
		if hi.v == lo.v {
			return hi.p
		}
		return lo.p + (value-lo.v)/(hi.v-lo.v)*25
	}
	return 100
}

// ClassifyMarketPosition places value in one of four bands:
// below P25, [P25, Median), [Median, P75], above P75.
func ClassifyMarketPosition(value float64, s SalarySummary) MarketPosition {
	switch {
	case value < s.P25:
		return PositionTooLow
	case value > s.P75:
		return PositionCompetitive
	case value < s.Median:
		return PositionFairLow
	default:
		return PositionFair
	}
}
