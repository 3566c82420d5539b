package submission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"aria2bt/internal/history"
	"aria2bt/internal/logging"
	"aria2bt/internal/selection"
	"aria2bt/internal/services"
)

// Recorder persists item results. Record errors are logged and ignored.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// ItemResult is the outcome of one item within a run.
type ItemResult struct {
	Item    Item
	Outcome *Outcome
	Status  history.Status
	Err     error
}

// Report summarizes a run.
type Report struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Results   []ItemResult
	Submitted int
	Failed    int
	// Err is set when the run stopped early because ctx was cancelled.
	Err error
}

// HasFailures reports whether any item failed or the run was cut short.
func (r Report) HasFailures() bool {
	return r.Failed > 0 || r.Err != nil
}

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Run submits items sequentially. Item failures are recorded and the run
// continues; cancellation of ctx stops before the next item.
func (s *Submitter) Run(ctx context.Context, items []Item) Report {
	report := Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Results: make([]ItemResult, 0, len(items)),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("submission run started", logging.Int("items", len(items)), logging.Bool("dry_run", s.dryRun))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			report.Err = err
			logging.WarnWithContext(logger, "submission run interrupted", "run_cancelled",
				logging.Int("remaining", len(items)-len(report.Results)),
				logging.Error(err),
				logging.ErrorHint("re-run to submit the remaining items"),
			)
			break
		}
		result := s.runItem(services.WithItem(ctx, item.Label()), item)
		if result.Status.Succeeded() {
			report.Submitted++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, result)
	}

	report.Finished = time.Now()
	logger.Info("submission run finished",
		logging.Int("submitted", report.Submitted),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", report.Duration()),
	)
	return report
}

func (s *Submitter) runItem(ctx context.Context, item Item) ItemResult {
	logger := logging.WithContext(ctx, s.logger)
	outcome, err := s.Submit(ctx, item)
	result := ItemResult{Item: item, Outcome: outcome, Err: err}
	switch {
	case err != nil:
		result.Status = services.FailureStatus(err)
		logging.ErrorWithContext(logger, "item not submitted", "submission_failed",
			logging.String("status", string(result.Status)),
			logging.Error(err),
			logging.ErrorHint(errorHint(err)),
		)
	case s.dryRun:
		result.Status = history.StatusDryRun
	default:
		result.Status = history.StatusSubmitted
	}
	s.record(ctx, result)
	return result
}

func (s *Submitter) record(ctx context.Context, result ItemResult) {
	if s.recorder == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	entry := history.Entry{
		RunID:  runID,
		Title:  result.Item.Label(),
		Status: result.Status,
	}
	if outcome := result.Outcome; outcome != nil {
		entry.URI = outcome.URI
		entry.GID = outcome.GID
		entry.SelectedFiles = selection.FormatIndices(outcome.Selection.Indices())
		entry.RenamedFiles = len(outcome.Selection.Renames())
		entry.RenameFailures = len(outcome.RenameFailures)
	}
	if result.Err != nil {
		entry.ErrorMessage = result.Err.Error()
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "could not record submission history", "history_record_failed",
			logging.Error(err),
			logging.ErrorHint("check the state directory is writable"),
			logging.String(logging.FieldImpact, "item missing from history"),
		)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, ErrNoContentFiles):
		return "the item must list its content_files"
	case errors.Is(err, ErrNothingSelected):
		return "check file_exts, exclude_samples and exclude_non_content"
	case errors.Is(err, services.ErrValidation):
		return "check the uri and aria_config templates against the item fields"
	default:
		return "check that the aria2 daemon is reachable and accepts the request"
	}
}
