package workflow

import (
	"time"

	errs "lead-pipeline/internal/common/errors"
)

// Stage names, used as failure subjects and metric labels.
const (
	StageSearch   = "search"
	StageEnrich   = "enrich"
	StageCreate   = "create"
	StageSequence = "sequence"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Failure records one non-fatal failure of a run. Subject is the candidate's
// display name for creation failures, "sequence" for enrollment and
// "enrichment batch N" for a dropped enrichment chunk. Kind is always
// partial; CauseKind classifies the underlying error.
type Failure struct {
	Subject   string         `json:"subject"`
	Error     string         `json:"error"`
	Code      errs.ErrorCode `json:"code"`
	Kind      errs.Kind      `json:"kind"`
	CauseKind errs.Kind      `json:"causeKind"`
}

// Result is the aggregate outcome of one run. Counters are never negative and
// Created + count of creation failures equals the number of records submitted
// to contact creation.
type Result struct {
	RunID           string        `json:"runId"`
	Searched        int           `json:"searched"`
	Enriched        int           `json:"enriched"`
	Created         int           `json:"created"`
	AddedToSequence int           `json:"addedToSequence"`
	ContactIDs      []string      `json:"contactIds"`
	Errors          []Failure     `json:"errors"`
	Error           string        `json:"error,omitempty"`
	StartedAt       time.Time     `json:"startedAt"`
	Duration        time.Duration `json:"durationNs"`
}

// Status summarizes the run for metrics and logs.
func (r Result) Status() string {
	switch {
	case r.Error != "":
		return StatusFailed
	case len(r.Errors) > 0:
		return StatusPartial
	default:
		return StatusCompleted
	}
}

func (r *Result) fail(subject string, cause error) {
	pf := errs.NewPartialFailure(subject, cause)
	msg := pf.Details
	if msg == "" {
		msg = pf.Message
	}
	causeKind := errs.KindOf(cause)
	if causeKind == "" {
		causeKind = errs.KindInternal
	}
	r.Errors = append(r.Errors, Failure{
		Subject:   subject,
		Error:     msg,
		Code:      pf.Code,
		Kind:      pf.Kind,
		CauseKind: causeKind,
	})
}
