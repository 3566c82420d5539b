package selection

import (
	"strconv"
	"strings"
)

// Reason explains why a file was left out of a job.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonSample     Reason = "sample"
	ReasonNonContent Reason = "non-content"
)

// CandidateFile is one entry in an item's file list.
type CandidateFile struct {
	Path string
}

// Name returns the path segment after the last slash.
func (f CandidateFile) Name() string {
	if idx := strings.LastIndex(f.Path, "/"); idx >= 0 {
		return f.Path[idx+1:]
	}
	return f.Path
}

// Ext returns the name's suffix from the last dot, including the dot. A name
// without a dot has an empty extension.
func (f CandidateFile) Ext() string {
	name := f.Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}

// Files wraps plain paths as candidates, preserving order.
func Files(paths []string) []CandidateFile {
	files := make([]CandidateFile, len(paths))
	for i, path := range paths {
		files[i] = CandidateFile{Path: path}
	}
	return files
}

// Rules configure the exclusion checks. ContentExtensions holds lower-cased
// extensions with their leading dot.
type Rules struct {
	ExcludeSamples    bool
	ExcludeNonContent bool
	ContentExtensions map[string]struct{}
}

// NewRules builds rules from an extension list, normalizing each entry.
func NewRules(excludeSamples, excludeNonContent bool, extensions []string) Rules {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		if normalized := NormalizeExt(ext); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return Rules{
		ExcludeSamples:    excludeSamples,
		ExcludeNonContent: excludeNonContent,
		ContentExtensions: set,
	}
}

// NormalizeExt lower-cases an extension and ensures it starts with a dot.
// Blank input stays blank.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsContent reports whether the extension belongs to a content file.
func (r Rules) IsContent(ext string) bool {
	_, ok := r.ContentExtensions[strings.ToLower(ext)]
	return ok
}

// Entry is the selection decision for one file.
type Entry struct {
	Index        int
	File         CandidateFile
	Included     bool
	Reason       Reason
	RenderedName string
}

// Result holds one entry per candidate in original order.
type Result struct {
	Entries []Entry
}

// Select applies the rules to every file. The sample check runs first, so a
// sample with a non-content extension reports the sample reason.
func Select(files []CandidateFile, rules Rules) Result {
	entries := make([]Entry, 0, len(files))
	for i, file := range files {
		entries = append(entries, Decide(i+1, file, rules))
	}
	return Result{Entries: entries}
}

// Decide evaluates a single file at the given 1-based index.
func Decide(index int, file CandidateFile, rules Rules) Entry {
	entry := Entry{Index: index, File: file}
	switch {
	case rules.ExcludeSamples && strings.Contains(strings.ToLower(file.Name()), "sample"):
		entry.Reason = ReasonSample
	case rules.ExcludeNonContent && !rules.IsContent(file.Ext()):
		entry.Reason = ReasonNonContent
	case file.Path == "":
		// Blank manifest slots hold their index but are never requested.
		entry.Reason = ReasonNonContent
	default:
		entry.Included = true
	}
	return entry
}

// Indices returns the included 1-based indices in ascending order.
func (r Result) Indices() []int {
	indices := make([]int, 0, len(r.Entries))
	for _, entry := range r.Entries {
		if entry.Included {
			indices = append(indices, entry.Index)
		}
	}
	return indices
}

// Included returns the included entries in order.
func (r Result) Included() []Entry {
	out := make([]Entry, 0, len(r.Entries))
	for _, entry := range r.Entries {
		if entry.Included {
			out = append(out, entry)
		}
	}
	return out
}

// Excluded returns the excluded entries in order.
func (r Result) Excluded() []Entry {
	out := make([]Entry, 0, len(r.Entries))
	for _, entry := range r.Entries {
		if !entry.Included {
			out = append(out, entry)
		}
	}
	return out
}

// Renames returns "index=name" pairs for included entries with a rendered name.
func (r Result) Renames() []string {
	pairs := make([]string, 0, len(r.Entries))
	for _, entry := range r.Entries {
		if entry.Included && entry.RenderedName != "" {
			pairs = append(pairs, strconv.Itoa(entry.Index)+"="+entry.RenderedName)
		}
	}
	return pairs
}

// FormatIndices joins indices with commas, the aria2 select-file syntax.
func FormatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}
