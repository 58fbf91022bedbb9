package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaulted system inputs.
const (
	DefaultInstanceType  = "ml.m5.xlarge"
	DefaultInstanceCount = 1
	DefaultBaseLocation  = "s3://pipewright-artifacts/pipelines"
	DefaultPipelineName  = "pipewright"
	DefaultVersion       = "1.0"
)

// validate is the shared validator instance; construction-time validation
// only, no per-request state.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Raw is the mutable, file-facing shape of one step configuration. It is
// decoded from YAML, validated, and then frozen into a Config.
type Raw struct {
	// Tier 1: required user inputs.
	Type string `yaml:"type" validate:"required"`

	// Tier 2: system inputs with defaults.
	JobType         string            `yaml:"job_type" validate:"omitempty,oneof=training calibration validation testing"`
	PipelineName    string            `yaml:"pipeline_name"`
	PipelineVersion string            `yaml:"pipeline_version"`
	BaseLocation    string            `yaml:"base_location" validate:"omitempty,startswith=s3://"`
	Role            string            `yaml:"role"`
	InstanceType    string            `yaml:"instance_type"`
	InstanceCount   int               `yaml:"instance_count" validate:"omitempty,min=1,max=64"`
	EnableCaching   *bool             `yaml:"enable_caching"`
	Parameters      map[string]string `yaml:"parameters"`
}

// ValidationError reports an invalid configuration. Always fatal, raised
// synchronously at construction, never retried.
type ValidationError struct {
	Name   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration '%s': %s", e.Name, e.Detail)
}

// Config is an immutable, validated step configuration instance.
type Config struct {
	name string
	raw  Raw

	// Derived fields, computed eagerly at construction.
	outputPrefix string
	cacheEnabled bool
}

// New validates raw fields, applies system defaults and computes derived
// fields. The returned Config never changes afterwards.
func New(name string, raw Raw) (*Config, error) {
	if name == "" {
		return nil, &ValidationError{Name: "(unnamed)", Detail: "empty config name"}
	}
	if err := validate.Struct(raw); err != nil {
		var details []string
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				details = append(details, fmt.Sprintf("field %s fails '%s'", fe.Field(), fe.Tag()))
			}
		} else {
			details = append(details, err.Error())
		}
		return nil, &ValidationError{Name: name, Detail: strings.Join(details, "; ")}
	}

	if raw.PipelineName == "" {
		raw.PipelineName = DefaultPipelineName
	}
	if raw.PipelineVersion == "" {
		raw.PipelineVersion = DefaultVersion
	}
	if raw.BaseLocation == "" {
		raw.BaseLocation = DefaultBaseLocation
	}
	if raw.InstanceType == "" {
		raw.InstanceType = DefaultInstanceType
	}
	if raw.InstanceCount == 0 {
		raw.InstanceCount = DefaultInstanceCount
	}

	cfg := &Config{name: name, raw: raw}

	// Derived tier: computed once, post-validation.
	cfg.outputPrefix = strings.TrimSuffix(raw.BaseLocation, "/") + "/" + raw.PipelineName
	cfg.cacheEnabled = raw.EnableCaching == nil || *raw.EnableCaching

	return cfg, nil
}

// Name returns the logical config name from the file.
func (c *Config) Name() string { return c.name }

// Type returns the configuration variant name, e.g. "XGBoostTrainingConfig".
func (c *Config) Type() string { return c.raw.Type }

// JobType returns the job-type tag ("training", "calibration", ...) or "".
func (c *Config) JobType() string { return c.raw.JobType }

// PipelineName returns the owning pipeline's base name.
func (c *Config) PipelineName() string { return c.raw.PipelineName }

// PipelineVersion returns the pipeline version string.
func (c *Config) PipelineVersion() string { return c.raw.PipelineVersion }

// Role returns the execution role identifier, possibly empty.
func (c *Config) Role() string { return c.raw.Role }

// InstanceType returns the compute instance type.
func (c *Config) InstanceType() string { return c.raw.InstanceType }

// InstanceCount returns the compute instance count.
func (c *Config) InstanceCount() int { return c.raw.InstanceCount }

// CacheEnabled reports whether step caching is on (default true).
func (c *Config) CacheEnabled() bool { return c.cacheEnabled }

// OutputPrefix returns the derived base output location for this config's
// pipeline: {base_location}/{pipeline_name}.
func (c *Config) OutputPrefix() string { return c.outputPrefix }

// Parameter returns a free-form step parameter by key.
func (c *Config) Parameter(key string) (string, bool) {
	v, ok := c.raw.Parameters[key]
	return v, ok
}
