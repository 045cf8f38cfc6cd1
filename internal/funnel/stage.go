// Package funnel computes hiring-pipeline reach counts from each applicant's
// current stage and append-only status history.
//
// Ordered stages:
//
//	NEW ──► SCREENING ──► INTERVIEW_1 ──► INTERVIEW_2 ──► OFFER ──► ACCEPTED
//	  │          │              │              │            │
//	  └──────────┴──────────────┴──────────────┴────────────┴──► REJECTED | WITHDRAWN
//
// REJECTED and WITHDRAWN are terminal and sit outside the ordering; an
// applicant in either is credited with the highest ordered stage found in
// its history.
package funnel

import (
	"fmt"
	"time"
)

// Stage values mirror the applicant_status enum in PostgreSQL.
type Stage string

const (
	StageNew        Stage = "NEW"
	StageScreening  Stage = "SCREENING"
	StageInterview1 Stage = "INTERVIEW_1"
	StageInterview2 Stage = "INTERVIEW_2"
	StageOffer      Stage = "OFFER"
	StageAccepted   Stage = "ACCEPTED"
	StageRejected   Stage = "REJECTED"
	StageWithdrawn  Stage = "WITHDRAWN"
)

// OrderedStages is the full pipeline order.
var OrderedStages = []Stage{
	StageNew, StageScreening, StageInterview1, StageInterview2, StageOffer, StageAccepted,
}

// ParseStage converts a raw string to a Stage, returning an error for
// unknown values.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	switch st {
	case StageNew, StageScreening, StageInterview1, StageInterview2, StageOffer, StageAccepted,
		StageRejected, StageWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown applicant stage %q", s)
}

// IsTerminal returns true for REJECTED and WITHDRAWN.
func IsTerminal(s Stage) bool { return s == StageRejected || s == StageWithdrawn }

// HistoryEntry records one stage transition. From is nil for the entry that
// created the applicant.
type HistoryEntry struct {
	From      *Stage    `json:"fromStage"`
	To        Stage     `json:"toStage"`
	ChangedAt time.Time `json:"changedAt"`
}

// Entity is one tracked applicant. History is ordered by ChangedAt,
// most recent first, as delivered by the store.
type Entity struct {
	ID      string         `json:"id"`
	Current Stage          `json:"currentStage"`
	History []HistoryEntry `json:"history"`
}
