package items

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"aria2bt/internal/services"
	"aria2bt/internal/submission"
)

type manifest struct {
	Items []rawItem `yaml:"items"`
}

type rawItem struct {
	Title        string         `yaml:"title"`
	ContentFiles fileList       `yaml:"content_files"`
	Fields       map[string]any `yaml:"fields"`
}

// fileList accepts either a single path or a list of paths.
type fileList []string

func (f *fileList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*f = nil
			return nil
		}
		var path string
		if err := node.Decode(&path); err != nil {
			return err
		}
		*f = fileList{path}
		return nil
	case yaml.SequenceNode:
		var paths []string
		if err := node.Decode(&paths); err != nil {
			return err
		}
		*f = paths
		return nil
	default:
		return fmt.Errorf("line %d: content_files must be a path or a list of paths", node.Line)
	}
}

// Load reads every manifest in order and concatenates their items.
func Load(paths ...string) ([]submission.Item, error) {
	var all []submission.Item
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, services.Wrap(services.ErrNotFound, "items", "open manifest", path, err)
		}
		loaded, err := Parse(file, path)
		file.Close()
		if err != nil {
			return nil, err
		}
		all = append(all, loaded...)
	}
	return all, nil
}

// Parse decodes one manifest. source names the manifest in errors.
func Parse(r io.Reader, source string) ([]submission.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "items", "read manifest", source, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, services.Wrap(services.ErrValidation, "items", "parse manifest", source, errors.New("manifest is empty"))
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, services.Wrap(services.ErrValidation, "items", "parse manifest", source, err)
	}
	var raw []rawItem
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode {
		err = root.Content[0].Decode(&raw)
	} else {
		var doc manifest
		err = root.Decode(&doc)
		raw = doc.Items
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "items", "decode manifest", source, err)
	}
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrValidation, "items", "decode manifest", source, errors.New("manifest lists no items"))
	}

	out := make([]submission.Item, 0, len(raw))
	for _, item := range raw {
		files := make([]string, 0, len(item.ContentFiles))
		// Positions are aria2 file indices, so blank entries keep their slot.
		for _, path := range item.ContentFiles {
			files = append(files, strings.TrimSpace(path))
		}
		fields := item.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		out = append(out, submission.Item{
			Title:  strings.TrimSpace(item.Title),
			Files:  files,
			Fields: fields,
		})
	}
	return out, nil
}
