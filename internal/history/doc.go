// Package history persists submission outcomes in SQLite.
//
// Every item a run touches produces one row: the rendered source URI, the
// daemon-assigned GID (or placeholder in dry runs), the selected file indices,
// and the error that stopped the item if any. The history is an operator aid
// for answering "was this already sent to aria2?"; the submission pipeline
// never reads it back, so a missing or pruned database changes nothing about
// how jobs are built.
//
// Schema changes bump the version in schema.go; users delete the database to
// adopt the new schema.
package history
