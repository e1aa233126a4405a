package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed jobs.yaml
var builtinJobs []byte

// FileSource reads records from a YAML document with a top-level "jobs" list.
// An empty path selects the built-in catalog.
type FileSource struct {
	Path string
}

// NewFileSource creates a YAML source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: strings.TrimSpace(path)}
}

// ListAll parses the file on every call.
func (s *FileSource) ListAll(_ context.Context) ([]JobRecord, error) {
	data := builtinJobs
	name := "built-in catalog"

	if s.Path != "" {
		raw, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog file: %w", err)
		}
		data, name = raw, s.Path
	}

	records, err := DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return records, nil
}

// DecodeYAML decodes a catalog document. Numeric ids and salaries are accepted and kept
// as text; skills may be a list or a comma separated string.
func DecodeYAML(data []byte) ([]JobRecord, error) {
	var doc struct {
		Jobs []map[string]any `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	var records []JobRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &records,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(doc.Jobs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	return records, nil
}
