package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed examples.yaml
var defaultExamplesYAML []byte

type examplesFile struct {
	Examples []string `yaml:"examples"`
}

// ParseExamples reads a YAML document with a top-level "examples" list.
// Blank entries are dropped.
func ParseExamples(data []byte) ([]string, error) {
	var file examplesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse examples: %w", err)
	}
	out := make([]string, 0, len(file.Examples))
	for _, example := range file.Examples {
		example = strings.TrimSpace(example)
		if example != "" {
			out = append(out, example)
		}
	}
	return out, nil
}

// DefaultExamples returns the built-in sample questions.
func DefaultExamples() []string {
	examples, err := ParseExamples(defaultExamplesYAML)
	if err != nil {
		panic(err)
	}
	return examples
}

func handleExamples(deps Dependencies, w http.ResponseWriter, _ *http.Request) {
	examples := deps.Examples
	if examples == nil {
		examples = DefaultExamples()
	}
	writeJSON(w, http.StatusOK, map[string]any{"examples": examples})
}
