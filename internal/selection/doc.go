// Package selection decides which files of a multi-file download are fetched.
//
// Selection indices are 1-based positions in the item's original file list,
// which is the index space the aria2 select-file and index-out options use.
// Excluded files keep their positions, so the indices of included files are
// never renumbered.
package selection
