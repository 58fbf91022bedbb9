package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/pipewright/internal/ctxlog"
)

// Metadata carries optional run metadata from the config file, used by the
// config resolver as matching hints.
type Metadata struct {
	// JobTypes maps DAG node names to expected job-type tags.
	JobTypes map[string]string `yaml:"job_types"`
}

// File is the loaded content of one configuration file: validated config
// instances keyed by logical name, plus optional metadata.
type File struct {
	Configs  map[string]*Config
	Metadata *Metadata
}

// fileSchema is the YAML document layout.
type fileSchema struct {
	Metadata *Metadata      `yaml:"metadata"`
	Configs  map[string]Raw `yaml:"configs"`
}

// Load reads, decodes and validates a configuration file. Any invalid
// config fails the whole load; partial results are never returned.
func Load(ctx context.Context, path string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading configuration file.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	var doc fileSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	if len(doc.Configs) == 0 {
		return nil, fmt.Errorf("configuration file %s declares no configs", path)
	}

	file := &File{
		Configs:  make(map[string]*Config, len(doc.Configs)),
		Metadata: doc.Metadata,
	}
	for name, raw := range doc.Configs {
		cfg, err := New(name, raw)
		if err != nil {
			return nil, fmt.Errorf("configuration file %s: %w", path, err)
		}
		file.Configs[name] = cfg
	}

	logger.Info("Configuration loaded.", "path", path, "configs", len(file.Configs))
	return file, nil
}
