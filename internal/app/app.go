// Package app wires the pipeline together for the CLI: it loads a workflow
// definition, translates it for a partition, emits the generated source and
// optionally drives the external compiler through the shared artifact cache.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/vk/nativeflow/internal/artifact"
	"github.com/vk/nativeflow/internal/ctxlog"
	"github.com/vk/nativeflow/internal/hclgraph"
	"github.com/vk/nativeflow/internal/workflow"
)

// Config holds everything an App needs to run one cycle.
type Config struct {
	WorkflowPath string
	PartitionID  int
	OutPath      string
	Compile      bool
	CompilerArgv []string
	WorkDir      string
	LogFormat    string
	LogLevel     string
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cache  *artifact.Cache
	loader *hclgraph.Loader
}

// NewApp constructs the application with its own isolated logger and a fresh
// process-wide artifact cache. Logs go to logW so emitted source on outW
// stays machine-readable.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).
		With("session", uuid.NewString())
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		cache:  artifact.NewCache(cfg.WorkDir),
		loader: hclgraph.NewLoader(),
	}
}

// Cache returns the application's artifact cache. Primarily for testing.
func (a *App) Cache() *artifact.Cache {
	return a.cache
}

// Run performs one load→translate→emit(→compile) cycle.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	g, err := a.loader.Load(ctx, cfg.WorkflowPath)
	if err != nil {
		return err
	}
	a.logger.Debug("Workflow graph loaded.", "nodes", g.Len())

	wf, err := workflow.New(g, cfg.PartitionID, a.cache, &artifact.ExecCompiler{Argv: cfg.CompilerArgv})
	if err != nil {
		return err
	}

	source := wf.Source()
	if cfg.OutPath != "" {
		if err := os.WriteFile(cfg.OutPath, []byte(source), 0644); err != nil {
			return fmt.Errorf("writing generated source to %s: %w", cfg.OutPath, err)
		}
		a.logger.Info("Generated workflow source written.", "path", cfg.OutPath)
	} else {
		fmt.Fprint(a.outW, source)
	}

	if cfg.Compile {
		id, err := wf.Compile(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("Workflow compiled.", "artifactID", id)
	}

	return nil
}
