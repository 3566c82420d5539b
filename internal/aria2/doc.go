// Package aria2 is a thin JSON-RPC client for the aria2 download daemon.
//
// Connect only builds the endpoint; the transport is stateless HTTP, so an
// unreachable daemon is discovered on the first call. Call failures are
// classified into ProtocolError (HTTP-level), RemoteFault (the daemon's own
// error object), SocketError (network-level) and UnknownConnectionError.
// AddURI wraps them in a SubmissionError that names the daemon endpoint, with
// credentials redacted.
//
// A client built WithDryRun never touches the network: AddURI returns the
// caller's gid option, or a fixed placeholder, so pipelines can be exercised
// without creating jobs.
package aria2
