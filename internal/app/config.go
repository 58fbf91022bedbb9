package app

import (
	"errors"
	"fmt"
)

// Modes the application can run in.
const (
	ModeCompile  = "compile"
	ModeValidate = "validate"
	ModePreview  = "preview"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl pipeline definition file or directory
	ConfigPath   string // yaml step configuration file

	Mode         string
	PipelineName string // overrides generated pipeline names when set
	Role         string // default execution role when configs omit one

	LogFormat string
	LogLevel  string
}

// NewConfig validates the application configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeCompile
	}
	switch cfg.Mode {
	case ModeCompile, ModeValidate, ModePreview:
	default:
		return nil, fmt.Errorf("invalid mode '%s': must be '%s', '%s' or '%s'", cfg.Mode, ModeCompile, ModeValidate, ModePreview)
	}

	return &cfg, nil
}
