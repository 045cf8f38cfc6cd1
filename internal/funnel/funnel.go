package funnel

import (
	"errors"
	"fmt"
	"math"
)

// StageCount is one row of a funnel report.
type StageCount struct {
	Stage       Stage `json:"stage"`
	Count       int   `json:"count"`
	RatePercent int   `json:"ratePercent"`
}

// Funnel counts applicants against a fixed ordered stage list.
// It is immutable after construction and safe for concurrent use.
type Funnel struct {
	stages []Stage
	rank   map[Stage]int
}

// New validates stages and returns a Funnel over them. The list must be
// non-empty, free of duplicates and contain no terminal stage.
func New(stages []Stage) (*Funnel, error) {
	if len(stages) == 0 {
		return nil, errors.New("funnel needs at least one stage")
	}
	f := &Funnel{
		stages: append([]Stage(nil), stages...),
		rank:   make(map[Stage]int, len(stages)),
	}
	for i, s := range stages {
		if _, err := ParseStage(string(s)); err != nil {
			return nil, err
		}
		if IsTerminal(s) {
			return nil, fmt.Errorf("terminal stage %s cannot be part of a funnel", s)
		}
		if _, dup := f.rank[s]; dup {
			return nil, fmt.Errorf("stage %s listed twice", s)
		}
		f.rank[s] = i
	}
	return f, nil
}

// Stages returns a copy of the ordered stage list.
func (f *Funnel) Stages() []Stage {
	return append([]Stage(nil), f.stages...)
}

// ReachedRank returns the position of the highest stage e is known to have
// reached. A current stage outside the list (terminal, or omitted from this
// view) is resolved from history; with no usable history the entity is
// credited with the first stage, where every applicant starts.
func (f *Funnel) ReachedRank(e Entity) int {
	if r, ok := f.rank[e.Current]; ok {
		return r
	}
	best := 0
	for _, h := range e.History {
		if r, ok := f.rank[h.To]; ok && r > best {
			best = r
		}
	}
	return best
}

// Compute returns, for each stage in order, how many entities reached at
// least that stage and the rate relative to the first stage.
func (f *Funnel) Compute(entities []Entity) []StageCount {
	reached := make([]int, len(f.stages))
	for _, e := range entities {
		reached[f.ReachedRank(e)]++
	}

	out := make([]StageCount, len(f.stages))
	cumulative := 0
	for i := len(f.stages) - 1; i >= 0; i-- {
		cumulative += reached[i]
		out[i] = StageCount{Stage: f.stages[i], Count: cumulative}
	}

	base := max(out[0].Count, 1)
	for i := range out {
		out[i].RatePercent = int(math.Round(100 * float64(out[i].Count) / float64(base)))
	}
	return out
}
