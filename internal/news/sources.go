package news

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var sourcesYAML []byte

// NewsSource describes an outlet articles are collected from.
type NewsSource struct {
	Source     string `yaml:"source" json:"source"`
	Name       string `yaml:"name" json:"name"`
	URL        string `yaml:"url" json:"url"`
	Bias       string `yaml:"bias" json:"bias"`
	Owner      string `yaml:"owner" json:"owner"`
	StateMedia bool   `yaml:"state_media" json:"state_media"`
	Based      string `yaml:"based" json:"based"`
}

var loadSources = sync.OnceValues(func() ([]NewsSource, error) {
	var sources []NewsSource
	if err := yaml.Unmarshal(sourcesYAML, &sources); err != nil {
		return nil, fmt.Errorf("parsing source catalog: %w", err)
	}
	return sources, nil
})

// Sources returns the outlet catalog. The slice is shared; do not modify it.
func Sources() ([]NewsSource, error) {
	return loadSources()
}
