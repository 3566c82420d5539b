// Package logging assembles structured slog loggers for aria2bt.
//
// New builds a console (key=value) or JSON handler on stdout and, when a log
// file is configured, fans every record out to a JSON file as well. Console
// level labels are coloured only when stdout is a terminal. Context helpers
// tag lines with the run id, item title and request correlation id stored by
// the services package, and WarnWithContext/ErrorWithContext make sure
// warnings carry an event type and a hint for the operator.
package logging
