package templating

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Engine renders text templates, caching parsed templates by source.
type Engine struct {
	funcs template.FuncMap
	cache sync.Map
}

// New constructs an Engine with the standard function set.
func New() *Engine {
	return &Engine{funcs: defaultFuncs()}
}

// Render parses (or reuses) the template and executes it against fields.
func (e *Engine) Render(source string, fields map[string]any) (string, error) {
	if !strings.Contains(source, "{{") {
		return source, nil
	}
	tmpl, err := e.parse(source)
	if err != nil {
		return "", err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, fields); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

func (e *Engine) parse(source string) (*template.Template, error) {
	if cached, ok := e.cache.Load(source); ok {
		return cached.(*template.Template), nil
	}
	tmpl, err := template.New("field").
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	actual, _ := e.cache.LoadOrStore(source, tmpl)
	return actual.(*template.Template), nil
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": func(v any) string { return strings.ToLower(toString(v)) },
		"upper": func(v any) string { return strings.ToUpper(toString(v)) },
		"title": func(v any) string { return cases.Title(language.Und).String(toString(v)) },
		"trim":  func(v any) string { return strings.TrimSpace(toString(v)) },
		"replace": func(old, replacement string, v any) string {
			return strings.ReplaceAll(toString(v), old, replacement)
		},
		"default": func(fallback, v any) any {
			if v == nil || toString(v) == "" {
				return fallback
			}
			return v
		},
	}
}

func toString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
