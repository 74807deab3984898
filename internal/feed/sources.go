// Package feed reads configured RSS sources and converts their entries into
// pipeline articles with plain-text content.
package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/globonews/newsmapper/internal/pipeline"
)

// LoadSources reads the source name -> feed URL mapping from a YAML file.
// A missing, malformed, or empty file is a fatal startup error.
func LoadSources(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pipeline.ConfigurationError{Reason: fmt.Sprintf("sources file %q", path), Err: err}
	}

	sources := make(map[string]string)
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, &pipeline.ConfigurationError{Reason: fmt.Sprintf("sources file %q", path), Err: err}
	}
	if len(sources) == 0 {
		return nil, &pipeline.ConfigurationError{Reason: fmt.Sprintf("sources file %q defines no sources", path)}
	}
	for name, url := range sources {
		if url == "" {
			return nil, &pipeline.ConfigurationError{Reason: fmt.Sprintf("source %q has an empty URL", name)}
		}
	}
	return sources, nil
}
