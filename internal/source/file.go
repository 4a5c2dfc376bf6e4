package source

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"autosearch/internal/domain"
)

// ErrInvalidDataset is returned for dataset files that cannot be used
var ErrInvalidDataset = errors.New("invalid dataset")

// record is one entry of a dataset file. Name is accepted in place of Text.
type record struct {
	ID   string      `yaml:"id"`
	Text string      `yaml:"text"`
	Name string      `yaml:"name"`
	Data interface{} `yaml:"data"`
}

// LoadFile reads a YAML or JSON list of suggestions
func LoadFile(path string) ([]domain.Suggestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON list of suggestions
func Parse(data []byte) ([]domain.Suggestion, error) {
	// JSON documents are valid YAML
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	items := make([]domain.Suggestion, 0, len(records))
	for i, r := range records {
		text := r.Text
		if text == "" {
			text = r.Name
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: entry %d has no text", ErrInvalidDataset, i)
		}
		items = append(items, domain.Suggestion{ID: r.ID, Text: text, Data: r.Data})
	}
	if err := domain.ValidateSuggestions(items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return items, nil
}
