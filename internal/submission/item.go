package submission

import (
	"fmt"
	"maps"
	"strings"

	"aria2bt/internal/naming"
	"aria2bt/internal/services"
)

var (
	// ErrNoContentFiles rejects an item that carries no file list.
	ErrNoContentFiles = fmt.Errorf("%w: item has no content_files", services.ErrValidation)
	// ErrNothingSelected rejects an item whose every file was excluded.
	ErrNothingSelected = fmt.Errorf("%w: no files selected for download", services.ErrValidation)
)

// Item is one multi-file download handed over by the host.
type Item struct {
	Title  string
	Files  []string
	Fields map[string]any
}

// Validate reports whether the item can be submitted at all.
func (i Item) Validate() error {
	if len(i.Files) == 0 {
		return ErrNoContentFiles
	}
	return nil
}

// Label returns a display name for logs and reports.
func (i Item) Label() string {
	if title := strings.TrimSpace(i.Title); title != "" {
		return title
	}
	if len(i.Files) > 0 {
		return i.Files[0]
	}
	return "(untitled)"
}

// fieldsFor builds the template context shared by every render of the item.
func fieldsFor(item Item, fixYear bool) map[string]any {
	fields := make(map[string]any, len(item.Fields)+2)
	maps.Copy(fields, item.Fields)
	if _, ok := fields["title"]; !ok {
		fields["title"] = item.Title
	}
	if fixYear {
		if name, ok := fields["series_name"].(string); ok {
			fields["series_name"] = naming.FixYear(name)
		}
	}
	return fields
}

// withFile extends the item context with per-file fields.
func withFile(fields map[string]any, filename string, index int) map[string]any {
	out := make(map[string]any, len(fields)+2)
	maps.Copy(out, fields)
	out["filename"] = filename
	out["index"] = index
	return out
}
