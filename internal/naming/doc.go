// Package naming renders the strings a job is built from: target file names,
// the source URI, and daemon option values.
//
// Rendering goes through an injected Templater so the package stays agnostic
// to template syntax. Rendered file names are scrubbed of characters that are
// illegal in paths on common filesystems before the original extension is
// appended.
package naming
