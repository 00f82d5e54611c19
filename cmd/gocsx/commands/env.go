// Package commands implements the gocsx subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/willibrandon/gocsx/cmd/gocsx/config"
	"github.com/willibrandon/gocsx/cmd/gocsx/output"
	"github.com/willibrandon/gocsx/cmd/gocsx/prompt"
	"github.com/willibrandon/gocsx/cmd/gocsx/version"
	"github.com/willibrandon/gocsx/namespace"
	"github.com/willibrandon/gocsx/observability"
	"github.com/willibrandon/gocsx/project"
	"github.com/willibrandon/gocsx/template"
	"github.com/willibrandon/gocsx/watch"
)

// errNonInteractive is returned when a value is missing and prompting is off.
var errNonInteractive = errors.New("prompting is disabled")

// Env is the state shared by all commands. Setup fills it from the root
// flags before a command runs; tests build it directly.
type Env struct {
	Console  *output.Console
	Config   *config.Config
	Logger   observability.Logger
	Prompter prompt.Prompter
	Queue    *watch.PathQueue

	NonInteractive bool

	tracer *sdktrace.TracerProvider
}

// NewEnv returns an Env with default settings.
func NewEnv(console *output.Console) *Env {
	return &Env{
		Console: console,
		Config:  config.Default(),
		Logger:  observability.NewNullLogger(),
		Queue:   watch.NewPathQueue(),
	}
}

// Setup applies the persistent flags, loads the configuration and starts
// tracing when an exporter is configured.
func (e *Env) Setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	verbosityName, _ := flags.GetString("verbosity")
	verbosity, err := output.ParseVerbosity(verbosityName)
	if err != nil {
		return err
	}
	e.Console.SetVerbosity(verbosity)
	if noColor, _ := flags.GetBool("no-color"); noColor {
		e.Console.SetColors(false)
	}
	if nonInteractive, _ := flags.GetBool("non-interactive"); nonInteractive {
		e.NonInteractive = true
	}

	e.Logger = observability.NewLogger(e.Console.ErrOut(), observability.ParseLogLevel(verbosityName))

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	explicit, _ := flags.GetString("config")
	cfg, err := config.Load(wd, explicit)
	if err != nil {
		return err
	}
	e.Config = cfg
	if cfg.Path != "" {
		e.Logger.Debug("Loaded configuration from {ConfigPath}", cfg.Path)
	}

	if exporter := strings.ToLower(cfg.Tracing.Exporter); exporter != "" && exporter != "none" {
		tp, err := observability.SetupTracing(cmd.Context(), observability.TracerConfig{
			ServiceVersion: version.Version,
			Exporter:       exporter,
			Endpoint:       cfg.Tracing.Endpoint,
			Output:         e.Console.ErrOut(),
		})
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		e.tracer = tp
	}
	return nil
}

// Cleanup flushes traces.
func (e *Env) Cleanup() {
	if e.tracer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := observability.ShutdownTracing(ctx, e.tracer); err != nil {
		e.Logger.Warn("Could not flush traces: {Error}", err)
	}
	e.tracer = nil
}

func (e *Env) projectOptions() []project.Option {
	return []project.Option{project.WithLogger(e.Logger)}
}

// Resolver returns a namespace resolver honoring workspaceRoots.
func (e *Env) Resolver() *namespace.Resolver {
	return namespace.NewResolver(
		namespace.WithWorkspaceRoots(e.Config.WorkspaceRoots...),
		namespace.WithLogger(e.Logger),
		namespace.WithProjectOptions(e.projectOptions()...),
	)
}

// Scaffolder returns a scaffolder configured from the settings.
func (e *Env) Scaffolder() *template.Scaffolder {
	opts := []template.ScaffoldOption{
		template.WithResolver(e.Resolver()),
		template.WithIncludeNamespaces(e.Config.IncludeNamespaces),
		template.WithFileScopedNamespace(e.Config.UseFileScopedNamespace),
		template.WithScaffoldLogger(e.Logger),
		template.WithScaffoldProjectOptions(e.projectOptions()...),
	}
	if e.Config.TemplatesDir != "" {
		opts = append(opts, template.WithTemplatesDir(e.Config.TemplatesDir))
	}
	if len(e.Config.FormatCommand) > 0 {
		opts = append(opts, template.WithFormatCommand(e.Config.FormatCommand...))
	}
	return template.NewScaffolder(opts...)
}

// prompter returns the Prompter, opening the terminal on first use.
func (e *Env) prompter() (prompt.Prompter, error) {
	if e.Prompter != nil {
		return e.Prompter, nil
	}
	if e.NonInteractive {
		return nil, errNonInteractive
	}
	t, err := prompt.NewTerminal()
	if err != nil {
		return nil, err
	}
	e.Prompter = t
	return t, nil
}

// findWriter returns the writer for the manifest governing path.
func (e *Env) findWriter(path string) (*project.Writer, error) {
	w, err := project.FindWriter(path, e.Config.Watch.IncludeShared, e.projectOptions()...)
	if errors.Is(err, project.ErrNotFound) {
		return nil, fmt.Errorf("cannot find a project file for path '%s'", path)
	}
	return w, err
}

// chooseBuildAction asks for one of the selectable build actions.
func (e *Env) chooseBuildAction(label string) (project.BuildAction, bool, error) {
	p, err := e.prompter()
	if err != nil {
		return 0, false, err
	}
	var names []string
	for _, a := range project.SelectableBuildActions() {
		names = append(names, a.String())
	}
	name, ok, err := p.Choose(label, names)
	if err != nil || !ok {
		return 0, false, err
	}
	action, err := project.ParseBuildAction(name)
	return action, err == nil, err
}
