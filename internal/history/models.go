package history

import "time"

// Status records how a single item submission ended.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusDryRun    Status = "dry_run"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusSubmitted,
	StatusDryRun,
	StatusRejected,
	StatusFailed,
}

// AllStatuses returns every known status in display order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Succeeded reports whether the status represents a job the daemon accepted
// (or would have accepted in a dry run).
func (s Status) Succeeded() bool {
	return s == StatusSubmitted || s == StatusDryRun
}

// Entry is one recorded item submission attempt.
type Entry struct {
	ID             int64
	RunID          string
	Title          string
	URI            string
	GID            string
	Status         Status
	SelectedFiles  string
	RenamedFiles   int
	RenameFailures int
	ErrorMessage   string
	CreatedAt      time.Time
}
