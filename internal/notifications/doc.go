// Package notifications pushes submission events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never need to check whether notifications are enabled. Each event
// family (job submitted, run completed, errors) can be switched off
// individually in the [notifications] config section.
package notifications
