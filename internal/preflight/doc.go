// Package preflight provides readiness checks for the aria2 daemon and the
// local directories aria2bt writes to.
//
// These checks run in two contexts:
//   - "aria2bt submit --check" calls RunAll before submitting anything and
//     aborts the run when a check fails.
//   - "aria2bt check" prints every result as a table.
package preflight
