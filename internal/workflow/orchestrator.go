// Package workflow runs the search → enrich → create → enroll pipeline.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"lead-pipeline/internal/apollo"
	"lead-pipeline/internal/batch"
	"lead-pipeline/internal/common/clock"
	errs "lead-pipeline/internal/common/errors"
	"lead-pipeline/internal/common/logger"
	"lead-pipeline/internal/common/metrics"
)

var tracer = otel.Tracer("lead-pipeline/workflow")

type Searcher interface {
	SearchPeople(ctx context.Context, filters apollo.PeopleSearchFilters, page, perPage int) (*apollo.PeopleSearchResult, error)
}

type Enricher interface {
	BulkMatchPeople(ctx context.Context, details []apollo.MatchDetails, opts apollo.BulkMatchOptions) (*apollo.BulkMatchResult, error)
}

type ContactCreator interface {
	CreateContact(ctx context.Context, in apollo.ContactInput) (*apollo.Contact, error)
}

type SequenceEnroller interface {
	AddContactsToSequence(ctx context.Context, sequenceID string, contactIDs []string, emailAccountID string) (*apollo.SequenceEnrollment, error)
}

// Recorder receives run and stage measurements.
type Recorder interface {
	RecordRun(ctx context.Context, status string, duration time.Duration)
	RecordStage(ctx context.Context, stage string, duration time.Duration, succeeded, failed int)
}

type Dependencies struct {
	Search    Searcher
	Enrich    Enricher
	Contacts  ContactCreator
	Sequences SequenceEnroller
	Logger    logger.Logger
	Recorder  Recorder
	Clock     clock.Clock
}

type Options struct {
	// DefaultMaxResults applies when a Spec leaves MaxResults unset.
	DefaultMaxResults int
	// BatchSize is the enrichment chunk size, capped at the bulk endpoint limit.
	BatchSize int
}

// Orchestrator is safe to share between goroutines; runs keep no state on it.
type Orchestrator struct {
	search    Searcher
	enrich    Enricher
	contacts  ContactCreator
	sequences SequenceEnroller
	logger    logger.Logger
	recorder  Recorder
	clock     clock.Clock
	opts      Options
}

func New(deps Dependencies, opts Options) (*Orchestrator, error) {
	if deps.Search == nil {
		return nil, fmt.Errorf("search collaborator is required")
	}
	if deps.Contacts == nil {
		return nil, fmt.Errorf("contact collaborator is required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if opts.DefaultMaxResults <= 0 {
		opts.DefaultMaxResults = DefaultMaxResults
	}
	if opts.BatchSize <= 0 || opts.BatchSize > apollo.MaxBulkSize {
		opts.BatchSize = batch.DefaultSize
	}

	return &Orchestrator{
		search:    deps.Search,
		enrich:    deps.Enrich,
		contacts:  deps.Contacts,
		sequences: deps.Sequences,
		logger:    deps.Logger,
		recorder:  deps.Recorder,
		clock:     deps.Clock,
		opts:      opts,
	}, nil
}

// Run executes one workflow. It never panics and never returns an error:
// per-item failures land in Result.Errors, anything that stops the run early
// lands in Result.Error next to the counters accumulated so far. A failed
// search is a valid terminal state, not an error: the run ends with zero
// counters and the failure is only logged and counted in stage metrics.
func (o *Orchestrator) Run(ctx context.Context, spec Spec) (result Result) {
	result = Result{
		RunID:      uuid.NewString(),
		ContactIDs: []string{},
		Errors:     []Failure{},
		StartedAt:  o.clock.Now(),
	}

	ctx, span := tracer.Start(ctx, "workflow.run")
	span.SetAttributes(attribute.String("lead_pipeline.run_id", result.RunID))
	log := o.logger.With(map[string]interface{}{"runId": result.RunID})

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("unexpected failure: %v", r)
			log.Error("Workflow run panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
		}
		result.Duration = o.clock.Now().Sub(result.StartedAt)
		status := result.Status()

		span.SetAttributes(
			attribute.Int("lead_pipeline.searched", result.Searched),
			attribute.Int("lead_pipeline.enriched", result.Enriched),
			attribute.Int("lead_pipeline.created", result.Created),
			attribute.Int("lead_pipeline.added_to_sequence", result.AddedToSequence),
			attribute.Int("lead_pipeline.failures", len(result.Errors)),
		)
		if status == StatusFailed {
			span.SetStatus(codes.Error, result.Error)
		}
		span.End()

		metrics.WorkflowRunsTotal.WithLabelValues(status).Inc()
		o.recorder.RecordRun(ctx, status, result.Duration)

		log.Info("Workflow run finished", map[string]interface{}{
			"status":          status,
			"searched":        result.Searched,
			"enriched":        result.Enriched,
			"created":         result.Created,
			"addedToSequence": result.AddedToSequence,
			"failures":        len(result.Errors),
			"duration":        result.Duration.String(),
		})
	}()

	if err := o.run(ctx, spec, &result, log); err != nil {
		result.Error = err.Error()
		log.Error("Workflow run aborted", errs.LogFields(err))
	}
	return result
}

func (o *Orchestrator) run(ctx context.Context, spec Spec, result *Result, log logger.Logger) error {
	if spec.Enrich && o.enrich == nil {
		return errs.NewValidationError(errs.ErrCodeInvalidInput, "enrichment requested but no enrichment collaborator is configured", "")
	}

	candidates, ok := o.searchStage(ctx, spec, result, log)
	if !ok {
		return nil
	}
	result.Searched = len(candidates)

	records := candidates
	if spec.Enrich {
		enriched, err := o.enrichStage(ctx, spec, candidates, result, log)
		if err != nil {
			return err
		}
		result.Enriched = len(enriched)
		records = enriched
	}

	if err := o.createStage(ctx, spec, records, result, log); err != nil {
		return err
	}

	if spec.EnrollsInSequence() && len(result.ContactIDs) > 0 {
		return o.sequenceStage(ctx, spec, result, log)
	}
	return nil
}

// searchStage returns false when the run should end with zero counters.
func (o *Orchestrator) searchStage(ctx context.Context, spec Spec, result *Result, log logger.Logger) ([]apollo.Person, bool) {
	started := o.clock.Now()
	perPage := spec.PerPage(o.opts.DefaultMaxResults)

	out := attempt(func() (*apollo.PeopleSearchResult, error) {
		return o.search.SearchPeople(ctx, spec.Filters, 1, perPage)
	})

	var candidates []apollo.Person
	ok := Match(out,
		func(res *apollo.PeopleSearchResult) bool {
			if res != nil {
				candidates = res.People
			}
			if len(candidates) > perPage {
				candidates = candidates[:perPage]
			}
			return len(candidates) > 0
		},
		func(kind errs.Kind, msg string) bool {
			log.Warn("Search failed; ending run with no results", map[string]interface{}{
				"errorKind": string(kind),
				"error":     msg,
			})
			return false
		})

	o.observeStage(ctx, StageSearch, started, len(candidates), boolToInt(!out.IsOk()))
	log.Info("Search stage finished", map[string]interface{}{
		"perPage":    perPage,
		"candidates": len(candidates),
	})
	return candidates, ok
}

func (o *Orchestrator) enrichStage(ctx context.Context, spec Spec, candidates []apollo.Person, result *Result, log logger.Logger) ([]apollo.Person, error) {
	started := o.clock.Now()
	opts := apollo.BulkMatchOptions{RevealPersonalEmails: spec.RevealPersonalEmails}

	enriched := make([]apollo.Person, 0, len(candidates))
	failedBatches := 0
	n := 0
	for chunk := range batch.Split(candidates, o.opts.BatchSize) {
		n++
		if err := ctx.Err(); err != nil {
			o.observeStage(ctx, StageEnrich, started, len(enriched), failedBatches)
			return enriched, err
		}

		details := make([]apollo.MatchDetails, len(chunk))
		for i, p := range chunk {
			details[i] = apollo.MatchDetailsFor(p)
		}

		out := attempt(func() (*apollo.BulkMatchResult, error) {
			return o.enrich.BulkMatchPeople(ctx, details, opts)
		})
		switch {
		case out.IsOk():
			matched := out.Value().Matched()
			if len(matched) > len(chunk) {
				matched = matched[:len(chunk)]
			}
			enriched = append(enriched, matched...)
		default:
			failedBatches++
			subject := fmt.Sprintf("enrichment batch %d", n)
			result.fail(subject, out.Unwrap())
			log.Warn("Enrichment batch failed; dropping its candidates", map[string]interface{}{
				"batch":     n,
				"size":      len(chunk),
				"errorKind": string(out.Kind()),
				"error":     out.Message(),
			})
		}
	}

	o.observeStage(ctx, StageEnrich, started, len(enriched), failedBatches)
	log.Info("Enrichment stage finished", map[string]interface{}{
		"batches":  n,
		"enriched": len(enriched),
		"dropped":  len(candidates) - len(enriched),
	})
	return enriched, nil
}

func (o *Orchestrator) createStage(ctx context.Context, spec Spec, records []apollo.Person, result *Result, log logger.Logger) error {
	started := o.clock.Now()
	failed := 0
	defer func() {
		o.observeStage(ctx, StageCreate, started, result.Created, failed)
	}()

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		out := attempt(func() (*apollo.Contact, error) {
			c, err := o.contacts.CreateContact(ctx, apollo.ContactInputFor(record, spec.LabelNames))
			if err == nil && (c == nil || c.ID == "") {
				return nil, errs.NewInternalError("contact creation returned no contact id", nil)
			}
			return c, err
		})
		switch {
		case out.IsOk():
			result.Created++
			result.ContactIDs = append(result.ContactIDs, out.Value().ID)
		default:
			failed++
			name := record.DisplayName()
			result.fail(name, out.Unwrap())
			log.Warn("Contact creation failed", map[string]interface{}{
				"subject":   name,
				"errorKind": string(out.Kind()),
				"error":     errs.Redact(out.Message()),
			})
		}
	}

	log.Info("Contact stage finished", map[string]interface{}{
		"created": result.Created,
		"failed":  failed,
	})
	return nil
}

func (o *Orchestrator) sequenceStage(ctx context.Context, spec Spec, result *Result, log logger.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	started := o.clock.Now()

	var out Outcome[*apollo.SequenceEnrollment]
	if o.sequences == nil {
		out = Err[*apollo.SequenceEnrollment](errs.NewValidationError(errs.ErrCodeInvalidInput,
			"sequence enrollment requested but no sequence collaborator is configured", ""))
	} else {
		ids := append([]string(nil), result.ContactIDs...)
		out = attempt(func() (*apollo.SequenceEnrollment, error) {
			return o.sequences.AddContactsToSequence(ctx, spec.SequenceID, ids, spec.EmailAccountID)
		})
	}

	if out.IsOk() {
		result.AddedToSequence = len(result.ContactIDs)
		o.observeStage(ctx, StageSequence, started, result.AddedToSequence, 0)
		log.Info("Contacts enrolled in sequence", map[string]interface{}{
			"sequenceId": spec.SequenceID,
			"contacts":   result.AddedToSequence,
		})
		return nil
	}

	result.fail(StageSequence, out.Unwrap())
	o.observeStage(ctx, StageSequence, started, 0, len(result.ContactIDs))
	log.Warn("Sequence enrollment failed; created contacts are kept", map[string]interface{}{
		"sequenceId": spec.SequenceID,
		"contacts":   len(result.ContactIDs),
		"errorKind":  string(out.Kind()),
		"error":      out.Message(),
	})
	return nil
}

func (o *Orchestrator) observeStage(ctx context.Context, stage string, started time.Time, succeeded, failed int) {
	if succeeded > 0 {
		metrics.WorkflowItemsTotal.WithLabelValues(stage, "success").Add(float64(succeeded))
	}
	if failed > 0 {
		metrics.WorkflowItemsTotal.WithLabelValues(stage, "failure").Add(float64(failed))
	}
	o.recorder.RecordStage(ctx, stage, o.clock.Now().Sub(started), succeeded, failed)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(context.Context, string, time.Duration)             {}
func (nopRecorder) RecordStage(context.Context, string, time.Duration, int, int) {}
