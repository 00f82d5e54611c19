package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/observability"
	"github.com/willibrandon/gocsx/project"
	"github.com/willibrandon/gocsx/watch"
)

type watchOptions struct {
	action      string
	interactive bool
	metricsAddr string
	debounce    time.Duration
}

// NewWatchCommand creates the "watch" command.
func NewWatchCommand(env *Env) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Keep project manifests in sync with file changes",
		Long: `Watch a directory tree and update the nearest manifests as files change.

Created files are collected for a short quiet period and each manifest is
written once per batch. The build action comes from watch.buildActions in
the configuration (by extension), then --action, then a prompt when
--interactive is set. Files left without one are reported and skipped.
Deleted and renamed files and directories are followed one at a time.

Examples:
  gocsx watch
  gocsx watch src --action Compile
  gocsx watch --interactive --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runWatch(cmd.Context(), env, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.action, "action", "", "Build action for created files without a configured one")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "Prompt for the build action of unmatched files")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides metrics.addr)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "Quiet period before a batch of created files is synced (overrides watch.debounce)")
	return cmd
}

// syncOptions builds the Syncer configuration from settings and flags.
func syncOptions(env *Env, opts *watchOptions) ([]watch.SyncOption, error) {
	actions, err := env.Config.ExtensionActions()
	if err != nil {
		return nil, err
	}
	syncOpts := []watch.SyncOption{
		watch.WithSyncLogger(env.Logger),
		watch.WithIncludeShared(env.Config.Watch.IncludeShared),
		watch.WithExtensionActions(actions),
		watch.WithQueue(env.Queue),
		watch.WithSyncProjectOptions(env.projectOptions()...),
	}
	if opts.action != "" {
		action, err := project.ParseBuildAction(opts.action)
		if err != nil || action == project.BuildActionFolder {
			return nil, fmt.Errorf("invalid --action %q: must be one of %v", opts.action, project.SelectableBuildActions())
		}
		syncOpts = append(syncOpts, watch.WithDefaultAction(action))
	}
	if opts.interactive {
		if _, err := env.prompter(); err != nil {
			return nil, fmt.Errorf("--interactive: %w", err)
		}
		syncOpts = append(syncOpts, watch.WithActionFunc(promptAction(env)))
	}
	return syncOpts, nil
}

// promptAction asks once per manifest and batch for the files nothing else classified.
func promptAction(env *Env) watch.ActionFunc {
	return func(ctx context.Context, manifestPath string, files []string) (project.BuildAction, bool) {
		env.Console.Info("%d new file(s) in %s:", len(files), manifestPath)
		for _, f := range files {
			env.Console.Info("  %s", f)
		}
		action, ok, err := env.chooseBuildAction("Build action")
		if err != nil {
			env.Logger.Warn("Could not prompt for a build action: {Error}", err)
			return 0, false
		}
		return action, ok
	}
}

// reportBatch prints what a synced batch changed.
func reportBatch(env *Env, res *watch.BatchResult) {
	manifests := make([]string, 0, len(res.Added))
	for m := range res.Added {
		manifests = append(manifests, m)
	}
	sort.Strings(manifests)
	for _, m := range manifests {
		env.Console.Success("Added %d file(s) to %s", len(res.Added[m]), m)
		for _, f := range res.Added[m] {
			env.Console.Detail("  %s", f)
		}
	}
	for _, f := range res.Unclassified {
		env.Console.Warning("No build action for %s", f)
	}
}

func runWatch(ctx context.Context, env *Env, root string, opts *watchOptions) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	syncOpts, err := syncOptions(env, opts)
	if err != nil {
		return err
	}

	debounce := env.Config.Watch.Debounce
	if opts.debounce > 0 {
		debounce = opts.debounce
	}
	w, err := watch.NewWatcher(abs, watch.NewSyncer(syncOpts...),
		watch.WithDebounce(debounce),
		watch.WithWatcherLogger(env.Logger),
		watch.WithBatchHandler(func(res *watch.BatchResult) { reportBatch(env, res) }),
	)
	if err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}

	addr := env.Config.Metrics.Addr
	if opts.metricsAddr != "" {
		addr = opts.metricsAddr
	}
	if addr != "" {
		srv := observability.NewMetricsServer(addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				env.Logger.Error("Metrics server failed: {Error}", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		env.Console.Info("Serving metrics on %s/metrics", addr)
	}

	env.Console.Info("Watching %s (Ctrl-C to stop)", abs)
	return w.Run(ctx)
}
