// Package main hosts the aria2bt CLI entrypoint and command graph.
//
// The Cobra command tree loads item manifests, submits them to an aria2
// daemon, and surfaces the supporting tooling: preflight checks, submission
// history, configuration scaffolding, and notification tests. Configuration
// is resolved once per invocation in commandContext so subcommands only deal
// with their own flags and output.
package main
