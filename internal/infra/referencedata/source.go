package referencedata

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"ivf_stage_bot/internal/domain/stage"

	"gopkg.in/yaml.v3"
)

// Source supplies stage reference data.
type Source interface {
	Load(ctx context.Context) ([]stage.ReferenceEntry, error)
}

//go:embed stages.yaml
var bundledStages []byte

type document struct {
	Entries []stage.ReferenceEntry `yaml:"entries"`
}

// YAMLSource reads reference data from a YAML document.
type YAMLSource struct {
	path string
	data []byte
}

// NewBundledSource serves the dataset compiled into the binary.
func NewBundledSource() *YAMLSource {
	return &YAMLSource{path: "bundled", data: bundledStages}
}

// NewFileSource reads path on every Load, so edits are picked up on refresh.
func NewFileSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

func (s *YAMLSource) Load(ctx context.Context) ([]stage.ReferenceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := s.data
	if data == nil {
		var err error
		data, err = os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read reference data %s: %w", s.path, err)
		}
	}
	return Parse(data)
}

// Parse decodes a reference document.
func Parse(data []byte) ([]stage.ReferenceEntry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse reference data: %w", err)
	}
	return doc.Entries, nil
}
