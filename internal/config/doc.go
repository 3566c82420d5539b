// Package config loads, normalizes, and validates aria2bt configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the ARIA2BT_ARIA2_PASSWORD and ARIA2BT_ARIA2_SECRET
// environment fallbacks so credentials can stay out of the file. The
// [submission] section maps onto submission.Settings; everything else
// configures the CLI around it (state directory, logging, notifications,
// history).
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
