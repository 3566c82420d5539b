// Package services defines shared utilities consumed by the submission
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, item titles, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (rejected vs failed).
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package services
