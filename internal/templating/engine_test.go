package templating_test

import (
	"strings"
	"testing"

	"aria2bt/internal/templating"
)

func TestRenderFields(t *testing.T) {
	engine := templating.New()
	fields := map[string]any{
		"series_name": "Show Name (1995)",
		"series_id":   "S01E01",
		"season":      1,
	}

	got, err := engine.Render("{{.series_name}} - {{.series_id | lower}}", fields)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if got != "Show Name (1995) - s01e01" {
		t.Fatalf("unexpected render %q", got)
	}

	got, err = engine.Render("season {{.season}}", fields)
	if err != nil || got != "season 1" {
		t.Fatalf("unexpected render %q (%v)", got, err)
	}
}

func TestRenderFuncs(t *testing.T) {
	engine := templating.New()
	fields := map[string]any{"name": "the great escape", "blank": ""}

	tests := []struct {
		tmpl string
		want string
	}{
		{"{{title .name}}", "The Great Escape"},
		{"{{upper .name}}", "THE GREAT ESCAPE"},
		{`{{replace " " "." .name}}`, "the.great.escape"},
		{`{{default "unknown" .blank}}`, "unknown"},
		{`{{trim "  x  "}}`, "x"},
	}
	for _, tc := range tests {
		got, err := engine.Render(tc.tmpl, fields)
		if err != nil {
			t.Fatalf("%s: Render returned error: %v", tc.tmpl, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.tmpl, got, tc.want)
		}
	}
}

func TestRenderMissingFieldFails(t *testing.T) {
	engine := templating.New()
	_, err := engine.Render("{{.series_name}}", map[string]any{"title": "x"})
	if err == nil {
		t.Fatal("expected error for missing field")
	}
	if !strings.Contains(err.Error(), "series_name") {
		t.Fatalf("expected error to name the missing field, got %v", err)
	}
}

func TestRenderParseErrorFails(t *testing.T) {
	engine := templating.New()
	if _, err := engine.Render("{{.unterminated", nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRenderPlainTextPassesThrough(t *testing.T) {
	engine := templating.New()
	got, err := engine.Render("/downloads/tv", nil)
	if err != nil || got != "/downloads/tv" {
		t.Fatalf("unexpected plain render %q (%v)", got, err)
	}
}

func TestRenderReusesCachedTemplate(t *testing.T) {
	engine := templating.New()
	for i, name := range []string{"a", "b", "c"} {
		got, err := engine.Render("{{.name}}", map[string]any{"name": name})
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if got != name {
			t.Fatalf("render %d: got %q want %q", i, got, name)
		}
	}
}
