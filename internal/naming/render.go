package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"aria2bt/internal/selection"
	"aria2bt/internal/services"
)

// Templater renders a template string against an item's field set.
type Templater interface {
	Render(template string, fields map[string]any) (string, error)
}

// RenderFailure reports a template that could not be rendered. Field names
// the value being rendered: "uri", "aria_config.<key>", or a file name.
type RenderFailure struct {
	Field    string
	Template string
	Err      error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render %s: %v", e.Field, e.Err)
}

// Unwrap exposes the underlying cause and tags the failure as a validation
// error for status classification.
func (e *RenderFailure) Unwrap() []error {
	return []error{services.ErrValidation, e.Err}
}

// ErrEmptyName is returned when a rename template produces nothing usable.
var ErrEmptyName = errors.New("rendered to an empty name")

// Renderer applies templates through a Templater.
type Renderer struct {
	templater Templater
}

// NewRenderer wraps the provided templater.
func NewRenderer(templater Templater) *Renderer {
	return &Renderer{templater: templater}
}

// Name renders the rename template for file, scrubs the result and appends
// the file's original extension.
func (r *Renderer) Name(file selection.CandidateFile, template string, fields map[string]any) (string, error) {
	rendered, err := r.render(file.Name(), template, fields)
	if err != nil {
		return "", err
	}
	scrubbed := Scrub(rendered)
	if scrubbed == "" {
		return "", &RenderFailure{Field: file.Name(), Template: template, Err: ErrEmptyName}
	}
	return scrubbed + file.Ext(), nil
}

// URI renders the job's source URI.
func (r *Renderer) URI(template string, fields map[string]any) (string, error) {
	rendered, err := r.render("uri", template, fields)
	if err != nil {
		return "", err
	}
	rendered = strings.TrimSpace(rendered)
	if rendered == "" {
		return "", &RenderFailure{Field: "uri", Template: template, Err: errors.New("rendered to an empty uri")}
	}
	return rendered, nil
}

// Option coerces a daemon option value to text and renders it.
func (r *Renderer) Option(key string, value any, fields map[string]any) (string, error) {
	field := "aria_config." + key
	text, err := OptionText(value)
	if err != nil {
		return "", &RenderFailure{Field: field, Err: err}
	}
	return r.render(field, text, fields)
}

func (r *Renderer) render(field, template string, fields map[string]any) (string, error) {
	if r == nil || r.templater == nil {
		return "", &RenderFailure{Field: field, Template: template, Err: errors.New("no templater configured")}
	}
	out, err := r.templater.Render(template, fields)
	if err != nil {
		return "", &RenderFailure{Field: field, Template: template, Err: err}
	}
	return out, nil
}

// OptionText converts a scalar option value to the text aria2 expects.
func OptionText(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", errors.New("option value is empty")
	default:
		return "", fmt.Errorf("unsupported option value type %T", value)
	}
}
