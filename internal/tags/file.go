package tags

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scubot/tagbot/internal/atomicfile"
)

// File is the YAML interchange document used by import and export.
type File struct {
	Tags []Tag `yaml:"tags"`
}

// ReadFile loads tags from a YAML document.
func ReadFile(path string) ([]Tag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, t := range f.Tags {
		if t.Name == "" {
			return nil, fmt.Errorf("%s: tag %d has no name", path, i+1)
		}
	}
	return f.Tags, nil
}

// WriteFile writes tags to path as YAML, replacing the file atomically.
func WriteFile(path string, tags []Tag) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Tags: tags}); err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
