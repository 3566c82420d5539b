package submission

import (
	"context"
	"errors"
	"log/slog"

	"aria2bt/internal/aria2"
	"aria2bt/internal/logging"
	"aria2bt/internal/naming"
	"aria2bt/internal/selection"
)

// JobAdder submits one job to the download daemon.
type JobAdder interface {
	AddURI(ctx context.Context, uris []string, options aria2.Options) (string, error)
}

// Outcome describes what was (or would have been) sent for an item. It is
// returned alongside any error so partial results can be reported.
type Outcome struct {
	GID            string
	URI            string
	Selection      selection.Result
	Options        aria2.Options
	RenameFailures []error
}

// Submitter processes items against one daemon connection.
type Submitter struct {
	cfg      *Config
	renderer *naming.Renderer
	rpc      JobAdder
	logger   *slog.Logger
	recorder Recorder
	dryRun   bool
}

// Option customizes a Submitter.
type Option func(*Submitter)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder stores every item outcome (see Run).
func WithRecorder(recorder Recorder) Option {
	return func(s *Submitter) {
		s.recorder = recorder
	}
}

// NewSubmitter wires the configuration, templater and RPC client together.
// A client reporting DryRun() marks successful outcomes as dry runs.
func NewSubmitter(cfg *Config, templater naming.Templater, rpc JobAdder, opts ...Option) (*Submitter, error) {
	if cfg == nil {
		return nil, errors.New("submission config is required")
	}
	if templater == nil {
		return nil, errors.New("templater is required")
	}
	if rpc == nil {
		return nil, errors.New("rpc client is required")
	}
	s := &Submitter{
		cfg:      cfg,
		renderer: naming.NewRenderer(templater),
		rpc:      rpc,
		logger:   logging.NewNop(),
	}
	if dry, ok := rpc.(interface{ DryRun() bool }); ok {
		s.dryRun = dry.DryRun()
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "submission")
	return s, nil
}

// Submit sends one job for item and returns the daemon's GID in the outcome.
func (s *Submitter) Submit(ctx context.Context, item Item) (*Outcome, error) {
	logger := logging.WithContext(ctx, s.logger)
	outcome := &Outcome{}
	if err := item.Validate(); err != nil {
		return outcome, err
	}
	fields := fieldsFor(item, s.cfg.FixYear())

	rules := s.cfg.Rules()
	entries := make([]selection.Entry, 0, len(item.Files))
	for i, file := range selection.Files(item.Files) {
		entry := selection.Decide(i+1, file, rules)
		if !entry.Included {
			logger.Debug("file excluded",
				logging.String("file", file.Path),
				logging.Int("index", entry.Index),
				logging.String("reason", string(entry.Reason)),
			)
			entries = append(entries, entry)
			continue
		}
		if s.cfg.RenameFiles() {
			name, err := s.renderer.Name(file, s.cfg.RenameTemplate(), withFile(fields, file.Name(), entry.Index))
			if err != nil {
				outcome.RenameFailures = append(outcome.RenameFailures, err)
				logging.WarnWithContext(logger, "could not rename file; keeping its original name", "rename_failed",
					logging.String("file", file.Name()),
					logging.Int("index", entry.Index),
					logging.Error(err),
					logging.ErrorHint("check rename_template against the item fields"),
				)
			} else {
				entry.RenderedName = name
			}
		}
		entries = append(entries, entry)
	}
	outcome.Selection = selection.Result{Entries: entries}

	// aria2 reads an empty select-file as "download every file", so a live
	// submission with nothing selected is refused. Dry runs carry on and
	// report the placeholder GID.
	indices := outcome.Selection.Indices()
	if len(indices) == 0 && !s.dryRun {
		return outcome, ErrNothingSelected
	}

	uri, err := s.renderer.URI(s.cfg.URITemplate(), fields)
	if err != nil {
		return outcome, err
	}
	outcome.URI = uri

	options, err := s.renderOptions(fields)
	if err != nil {
		return outcome, err
	}
	options[aria2.OptionIndexOut] = aria2.List(outcome.Selection.Renames()...)
	options[aria2.OptionSelectFile] = aria2.String(selection.FormatIndices(indices))
	delete(options, aria2.OptionGID)
	outcome.Options = options

	logger.Debug("adding job",
		logging.String("uri", uri),
		logging.String("dir", options[aria2.OptionDir].String()),
		logging.String("select_file", options[aria2.OptionSelectFile].String()),
	)
	gid, err := s.rpc.AddURI(ctx, []string{uri}, options)
	if err != nil {
		return outcome, err
	}
	outcome.GID = gid
	logger.Info("added to aria2",
		logging.String("uri", uri),
		logging.String("gid", gid),
		logging.Int("selected", len(indices)),
		logging.Bool("dry_run", s.dryRun),
	)
	return outcome, nil
}

// renderOptions renders every base option against the item fields, starting
// from a fresh copy so the configuration is never modified.
func (s *Submitter) renderOptions(fields map[string]any) (aria2.Options, error) {
	options := s.cfg.DaemonOptions()
	for _, key := range options.Keys() {
		value := options[key]
		if value.Kind() == aria2.KindList {
			items := value.List()
			for i, item := range items {
				rendered, err := s.renderer.Option(key, item, fields)
				if err != nil {
					return nil, err
				}
				items[i] = rendered
			}
			options[key] = aria2.List(items...)
			continue
		}
		rendered, err := s.renderer.Option(key, value, fields)
		if err != nil {
			return nil, err
		}
		options[key] = aria2.String(rendered)
	}
	return options, nil
}
