// Package cli implements the formdef command line: compiling, rendering and
// filling form definitions, serving them over HTTP and deriving definitions
// from OpenAPI documents.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdef/internal/config"
	"github.com/goliatone/go-formdef/internal/logging"
	"github.com/goliatone/go-formdef/pkg/loader"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/renderers/tui"
)

// Version is set at build time.
var Version = "dev"

// app carries state shared by the subcommands once the root command has
// loaded configuration.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *zap.Logger

	// driver replaces the survey prompt driver in tests.
	driver tui.PromptDriver
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "formdef",
		Short: "Compile, render and serve declarative form definitions",
		Long: `formdef compiles JSON or YAML form definitions into a render-ready form
with resolved widgets, validation rules and dependency metadata, then renders
them as HTML, JSON, templates or an interactive terminal session.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./formdef.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("render-locale", "", "locale used for validation messages")

	root.AddCommand(
		newCompileCommand(a),
		newRenderCommand(a),
		newFillCommand(a),
		newServeCommand(a),
		newInspectOpenAPICommand(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.WithFile(a.configFile), config.WithFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// Execute runs the CLI and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func readDefinition(path string) (model.FormDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("read %s: %w", path, err)
	}
	return loader.Parse(path, data)
}
