// Package submission turns download items into aria2 jobs.
//
// NewConfig validates the raw Settings once, before any connection attempt.
// A Submitter then handles one item at a time: it selects the content files,
// renders replacement names, renders the source URI and every daemon option,
// and sends exactly one addUri request. Rename failures are logged and skip
// only the affected file; URI and option render failures reject the item;
// daemon failures fail the item without affecting the rest of the run.
package submission
