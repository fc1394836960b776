package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/pipeline"
)

// request is one entry of a batch document.
type request struct {
	Action  map[string]any `yaml:"action" json:"action"`
	Context map[string]any `yaml:"context" json:"context"`
}

func (r request) decode() (pipeline.Request, error) {
	action, err := domain.ActionFromMap(r.Action)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("action: %w", err)
	}
	env, err := domain.ContextFromMap(r.Context)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("context: %w", err)
	}
	return pipeline.Request{Action: action, Context: env}, nil
}

// readDocument decodes a YAML (or JSON) document from path, or from stdin
// when path is "-".
func readDocument(path string, stdin io.Reader, out any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
