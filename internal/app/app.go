package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/pipewright/internal/builders"
	"github.com/vk/pipewright/internal/compiler"
	"github.com/vk/pipewright/internal/config"
	"github.com/vk/pipewright/internal/ctxlog"
	"github.com/vk/pipewright/internal/hcl"
	"github.com/vk/pipewright/internal/pipeline"
	"github.com/vk/pipewright/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: a populated builder set, the loaded step configurations, and
// the parsed pipeline definitions.
type App struct {
	outW        io.Writer
	logger      *slog.Logger
	registries  *registry.Manager
	modules     []builders.Module
	opts        compiler.Options
	configFile  *config.File
	definitions []*hcl.Definition
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registries.
// Failures to load configuration or register modules are fatal startup
// errors and panic.
func NewApp(outW io.Writer, appConfig *Config, loader *hcl.Loader, modules ...builders.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	configFile, err := config.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configurations: %w", err))
	}

	definitions, err := loader.Load(ctx, appConfig.PipelinePath)
	if err != nil {
		panic(fmt.Errorf("failed to load pipeline definitions: %w", err))
	}
	if len(definitions) == 0 {
		panic(fmt.Errorf("no pipeline definitions found under %s", appConfig.PipelinePath))
	}

	if len(modules) == 0 {
		modules = coreModules
	}
	registries := registry.NewManager()
	// Register once into the default context up front: a registration
	// conflict is a programmer error and must fail at startup, not
	// mid-run.
	set, err := newBuilderSet(registries.Context(registry.DefaultContext), modules)
	if err != nil {
		panic(err)
	}
	logger.Debug("All builder modules registered.", "count", len(modules), "step_types", set.Builders.StepTypes())

	return &App{
		outW:       outW,
		logger:     logger,
		registries: registries,
		modules:    modules,
		opts: compiler.Options{
			Session:      pipeline.Session("local"),
			Role:         appConfig.Role,
			PipelineName: appConfig.PipelineName,
		},
		configFile:  configFile,
		definitions: definitions,
	}
}

// Registries returns the application's registry manager. This is primarily
// for testing.
func (a *App) Registries() *registry.Manager {
	return a.registries
}

// newBuilderSet registers every module into a fresh builder set whose
// specifications live in the given registry.
func newBuilderSet(specs *registry.SpecRegistry, modules []builders.Module) (*builders.Set, error) {
	set := &builders.Set{
		Builders: builders.NewRegistry(),
		Specs:    specs,
		Table:    registry.NewStepTypeTable(),
	}
	for _, mod := range modules {
		if err := mod.Register(set); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// builderSetFor builds the set for one definition. Specifications register
// into the context named after the pipeline, so no definition sees another's
// specs. The context is cleared first, which keeps repeated runs of a
// same-named pipeline idempotent.
func (a *App) builderSetFor(def *hcl.Definition) (*builders.Set, error) {
	a.registries.ClearContext(def.Name)
	set, err := newBuilderSet(a.registries.Context(def.Name), a.modules)
	if err != nil {
		return nil, fmt.Errorf("pipeline '%s': %w", def.Name, err)
	}
	return set, nil
}

// Definitions returns the loaded pipeline definitions. Primarily for testing.
func (a *App) Definitions() []*hcl.Definition {
	return a.definitions
}

// Run executes the configured mode against every loaded pipeline definition.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", appConfig.Mode)

	for _, def := range a.definitions {
		file, err := a.bindConfigs(def)
		if err != nil {
			return err
		}

		set, err := a.builderSetFor(def)
		if err != nil {
			return err
		}
		c := compiler.New(set, a.opts)

		switch appConfig.Mode {
		case ModeValidate:
			err = a.runValidate(ctx, c, def, file)
		case ModePreview:
			err = a.runPreview(ctx, c, def, file)
		default:
			err = a.runCompile(ctx, c, def, file)
		}
		if err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// bindConfigs applies the definition's explicit config bindings: a pinned
// config is exposed under the node's own name, which resolution treats as an
// exact match. Pinning a config name that does not exist is fatal.
func (a *App) bindConfigs(def *hcl.Definition) (*config.File, error) {
	if len(def.ConfigBindings) == 0 {
		return a.configFile, nil
	}

	bound := &config.File{
		Configs:  make(map[string]*config.Config, len(a.configFile.Configs)),
		Metadata: a.configFile.Metadata,
	}
	for name, cfg := range a.configFile.Configs {
		bound.Configs[name] = cfg
	}
	for node, configName := range def.ConfigBindings {
		cfg, ok := a.configFile.Configs[configName]
		if !ok {
			return nil, fmt.Errorf("pipeline '%s': node '%s' is bound to unknown config '%s'", def.Name, node, configName)
		}
		bound.Configs[node] = cfg
	}
	return bound, nil
}

func (a *App) runCompile(ctx context.Context, c *compiler.Compiler, def *hcl.Definition, file *config.File) error {
	result, report, err := c.CompileWithReport(ctx, def.Graph, file)
	if err != nil {
		return fmt.Errorf("pipeline '%s': %w", def.Name, err)
	}

	fmt.Fprintf(a.outW, "compiled pipeline '%s' from definition '%s'\n", result.Pipeline.Name(), def.Name)
	fmt.Fprintln(a.outW, report.Summary())
	for _, warning := range report.Warnings {
		fmt.Fprintf(a.outW, "warning: %s\n", warning)
	}
	return nil
}

func (a *App) runValidate(ctx context.Context, c *compiler.Compiler, def *hcl.Definition, file *config.File) error {
	result := c.ValidateDAGCompatibility(ctx, def.Graph, file)
	fmt.Fprintf(a.outW, "pipeline '%s': %s\n", def.Name, result.Summary())
	if !result.Valid {
		return fmt.Errorf("pipeline '%s' failed validation", def.Name)
	}
	return nil
}

func (a *App) runPreview(ctx context.Context, c *compiler.Compiler, def *hcl.Definition, file *config.File) error {
	preview := c.PreviewResolution(ctx, def.Graph, file)

	fmt.Fprintf(a.outW, "pipeline '%s' resolution preview:\n", def.Name)
	for _, node := range def.Graph.Nodes() {
		np := preview.Nodes[node]
		if np == nil || len(np.Candidates) == 0 {
			fmt.Fprintf(a.outW, "  %s: no candidates\n", node)
			continue
		}
		status := "resolved"
		if !np.Resolved {
			status = "unresolved"
		} else if np.Ambiguous {
			status = "ambiguous"
		}
		top := np.Candidates[0]
		fmt.Fprintf(a.outW, "  %s: %s -> %s (confidence %.2f)\n", node, status, top.ConfigName, top.Confidence)
	}
	return nil
}
