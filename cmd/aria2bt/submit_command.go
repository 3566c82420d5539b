package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"aria2bt/internal/aria2"
	"aria2bt/internal/config"
	"aria2bt/internal/history"
	"aria2bt/internal/items"
	"aria2bt/internal/logging"
	"aria2bt/internal/notifications"
	"aria2bt/internal/preflight"
	"aria2bt/internal/selection"
	"aria2bt/internal/submission"
	"aria2bt/internal/templating"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var check bool

	cmd := &cobra.Command{
		Use:   "submit <manifest>...",
		Short: "Submit manifest items to the aria2 daemon",
		Long: "Load items from one or more YAML manifests and submit one aria2 job per item.\n" +
			"Each job carries the selected content files and their rendered names.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closer, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()

			loaded, err := items.Load(args...)
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another aria2bt run is in progress (lock %s)", cfg.LockPath())
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release run lock", logging.Error(err))
				}
			}()

			report, err := runSubmission(cmd.Context(), cfg, logger, loaded, dryRun, check)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderReport(report))
			mode := "submitted"
			if dryRun {
				mode = "would be submitted (dry run)"
			}
			fmt.Fprintf(out, "%d of %d items %s in %s\n", report.Submitted, len(loaded), mode, report.Duration().Round(time.Millisecond))

			if report.Err != nil {
				return fmt.Errorf("run interrupted: %w", report.Err)
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d items failed", report.Failed, len(loaded))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the jobs instead of sending them to aria2")
	cmd.Flags().BoolVar(&dryRun, "test", false, "Alias for --dry-run")
	cmd.Flags().BoolVar(&check, "check", false, "Check the daemon before submitting")
	return cmd
}

func runSubmission(ctx context.Context, cfg *config.Config, logger *slog.Logger, loaded []submission.Item, dryRun, check bool) (submission.Report, error) {
	subCfg, err := submission.NewConfig(cfg.SubmissionSettings())
	if err != nil {
		return submission.Report{}, err
	}
	client, err := subCfg.Connect(
		aria2.WithDryRun(dryRun),
		aria2.WithEndpointPath(cfg.Aria2.EndpointPath),
		aria2.WithLogger(logger),
	)
	if err != nil {
		return submission.Report{}, err
	}

	if check && !dryRun {
		result := preflight.CheckDaemon(ctx, "aria2 daemon", client)
		if !result.Passed {
			return submission.Report{}, fmt.Errorf("aria2 daemon check failed: %s", result.Detail)
		}
		logger.Info("aria2 daemon reachable", logging.String("detail", result.Detail), logging.String("url", client.URL()))
	}

	opts := []submission.Option{submission.WithLogger(logger)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return submission.Report{}, err
		}
		defer store.Close()
		pruneHistory(ctx, cfg, store, logger)
		opts = append(opts, submission.WithRecorder(store))
	}

	submitter, err := submission.NewSubmitter(subCfg, templating.New(), client, opts...)
	if err != nil {
		return submission.Report{}, err
	}
	report := submitter.Run(ctx, loaded)

	if !dryRun {
		notifyReport(ctx, notifications.NewService(cfg), report, logger)
	}
	return report, nil
}

func pruneHistory(ctx context.Context, cfg *config.Config, store *history.Store, logger *slog.Logger) {
	cutoff := cfg.HistoryCutoff(time.Now())
	if cutoff.IsZero() {
		return
	}
	removed, err := store.Prune(ctx, cutoff)
	if err != nil {
		logging.WarnWithContext(logger, "history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.ErrorHint("check the state directory is writable"),
		)
		return
	}
	if removed > 0 {
		logger.Debug("pruned submission history", logging.Int64("removed", removed))
	}
}

// notifyReport publishes per-item and run notifications. Delivery failures
// are logged only.
func notifyReport(ctx context.Context, notifier notifications.Service, report submission.Report, logger *slog.Logger) {
	warn := func(err error) {
		if err == nil {
			return
		}
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.ErrorHint("check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "notification not delivered"),
		)
	}
	for _, result := range report.Results {
		switch {
		case result.Err == nil && result.Outcome != nil:
			warn(notifier.NotifyJobSubmitted(ctx, result.Item.Label(), result.Outcome.GID, len(result.Outcome.Selection.Indices())))
		case result.Err != nil:
			warn(notifier.NotifyError(ctx, result.Err, result.Item.Label()))
		}
	}
	if report.Err != nil && !errors.Is(report.Err, context.Canceled) {
		warn(notifier.NotifyError(ctx, report.Err, "run"))
	}
	warn(notifier.NotifyRunCompleted(ctx, report.Submitted, report.Failed, report.Duration()))
}

func renderReport(report submission.Report) string {
	headers := []string{"Item", "Status", "GID", "Files", "Renamed", "Detail"}
	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		gid, files, renamed := "-", "-", "0"
		if outcome := result.Outcome; outcome != nil {
			if outcome.GID != "" {
				gid = outcome.GID
			}
			if indices := outcome.Selection.Indices(); len(indices) > 0 {
				files = selection.FormatIndices(indices)
			}
			renamed = strconv.Itoa(len(outcome.Selection.Renames()))
		}
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		} else if result.Outcome != nil && len(result.Outcome.RenameFailures) > 0 {
			detail = fmt.Sprintf("%d rename failures", len(result.Outcome.RenameFailures))
		}
		rows = append(rows, []string{
			result.Item.Label(),
			string(result.Status),
			gid,
			files,
			renamed,
			detail,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
}
