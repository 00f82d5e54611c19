package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/willibrandon/gocsx/observability"
	"github.com/willibrandon/gocsx/project"
)

// ActionFunc picks the build action for files created below one manifest.
// Returning false leaves the files unclassified.
type ActionFunc func(ctx context.Context, manifestPath string, files []string) (project.BuildAction, bool)

// BatchResult reports what a batch of created files turned into.
type BatchResult struct {
	// Added maps manifest paths to the files classified in them.
	Added map[string][]string
	// Skipped holds vanished paths, directories, project files, files
	// outside any project and files that already had a build action.
	Skipped []string
	// Unclassified holds files no build action was chosen for.
	Unclassified []string
}

// Syncer applies filesystem changes to the nearest manifests.
type Syncer struct {
	queue         *PathQueue
	logger        observability.Logger
	includeShared bool
	extActions    map[string]project.BuildAction
	action        project.BuildAction
	choose        ActionFunc
	projectOpts   []project.Option

	folderWarned atomic.Bool
}

// SyncOption configures a Syncer.
type SyncOption func(*Syncer)

// WithSyncLogger sets the logger.
func WithSyncLogger(logger observability.Logger) SyncOption {
	return func(s *Syncer) { s.logger = logger }
}

// WithIncludeShared makes shared manifests eligible. A .projitems file wins
// over a .csproj in the same directory.
func WithIncludeShared(on bool) SyncOption {
	return func(s *Syncer) { s.includeShared = on }
}

// WithExtensionActions maps file extensions such as ".cs" to build actions.
func WithExtensionActions(actions map[string]project.BuildAction) SyncOption {
	return func(s *Syncer) {
		s.extActions = make(map[string]project.BuildAction, len(actions))
		for ext, a := range actions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.extActions[ext] = a
		}
	}
}

// WithDefaultAction sets the build action for files no extension matches.
func WithDefaultAction(action project.BuildAction) SyncOption {
	return func(s *Syncer) { s.action = action }
}

// WithActionFunc asks fn for files neither an extension nor the default action covers.
func WithActionFunc(fn ActionFunc) SyncOption {
	return func(s *Syncer) { s.choose = fn }
}

// WithQueue shares a PathQueue with other writers of the same manifests.
func WithQueue(q *PathQueue) SyncOption {
	return func(s *Syncer) { s.queue = q }
}

// WithSyncProjectOptions passes options to manifest readers and writers.
func WithSyncProjectOptions(opts ...project.Option) SyncOption {
	return func(s *Syncer) { s.projectOpts = opts }
}

// NewSyncer returns a syncer. Without extension actions, a default action or
// an ActionFunc, created files are reported but left unclassified.
func NewSyncer(opts ...SyncOption) *Syncer {
	s := &Syncer{
		queue:         NewPathQueue(),
		logger:        observability.NewNullLogger(),
		includeShared: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) writerFor(path string) (*project.Writer, error) {
	opts := append([]project.Option{project.WithLogger(s.logger)}, s.projectOpts...)
	return project.FindWriter(path, s.includeShared, opts...)
}

// HandleCreated classifies a batch of created paths. Each manifest gets one write.
func (s *Syncer) HandleCreated(ctx context.Context, paths []string) (*BatchResult, error) {
	res := &BatchResult{Added: make(map[string][]string)}

	var manifests []string
	byManifest := make(map[string][]string)
	writers := make(map[string]*project.Writer)

	for _, p := range dedupe(paths) {
		observability.WatchEventsTotal.WithLabelValues("create").Inc()
		info, err := os.Stat(p)
		if err != nil {
			// Temporary files are often gone before the batch is flushed.
			res.Skipped = append(res.Skipped, p)
			continue
		}
		if info.IsDir() {
			if !s.folderWarned.Swap(true) {
				s.logger.Warn("Folder build actions are not supported; skipping {Path}", p)
			}
			res.Skipped = append(res.Skipped, p)
			continue
		}
		if project.IsProjectSystemFile(p) {
			res.Skipped = append(res.Skipped, p)
			continue
		}

		w, err := s.writerFor(p)
		if err != nil {
			s.logger.Debug("No manifest for {Path}: {Error}", p, err)
			res.Skipped = append(res.Skipped, p)
			continue
		}
		has, err := w.HasBuildActionsForFile(ctx, p)
		if err != nil {
			s.logger.Warn("Could not read {ManifestPath} for {Path}: {Error}", w.FilePath(), p, err)
		}
		if err != nil || has {
			res.Skipped = append(res.Skipped, p)
			continue
		}

		m := w.FilePath()
		if _, ok := writers[m]; !ok {
			writers[m] = w
			manifests = append(manifests, m)
		}
		byManifest[m] = append(byManifest[m], p)
	}

	var errs []error
	for _, m := range manifests {
		items, unclassified := s.classify(ctx, m, byManifest[m])
		res.Unclassified = append(res.Unclassified, unclassified...)
		for _, f := range unclassified {
			s.logger.Warn("No build action chosen for {Path}", f)
		}
		if len(items) == 0 {
			continue
		}

		w := writers[m]
		err := s.queue.Do(m, func() error { return w.Classify(ctx, items) })
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, it := range items {
			res.Added[m] = append(res.Added[m], it.Path)
		}
	}
	return res, errors.Join(errs...)
}

// classify assigns build actions to the files of one manifest.
func (s *Syncer) classify(ctx context.Context, manifest string, files []string) ([]project.Classification, []string) {
	var items []project.Classification
	var rest []string
	for _, f := range files {
		if a, ok := s.extActions[strings.ToLower(filepath.Ext(f))]; ok && a.IsValid() {
			items = append(items, project.Classification{Path: f, Action: a})
			continue
		}
		if s.action.IsValid() {
			items = append(items, project.Classification{Path: f, Action: s.action})
			continue
		}
		rest = append(rest, f)
	}

	if len(rest) == 0 || s.choose == nil {
		return items, rest
	}
	a, ok := s.choose(ctx, manifest, rest)
	if !ok || !a.IsValid() {
		return items, rest
	}
	for _, f := range rest {
		items = append(items, project.Classification{Path: f, Action: a})
	}
	return items, nil
}

// HandleDeleted removes the build action of a deleted path. wasDir removes
// every item below it.
func (s *Syncer) HandleDeleted(ctx context.Context, path string, wasDir bool) error {
	observability.WatchEventsTotal.WithLabelValues("delete").Inc()
	w, err := s.writerFor(path)
	if err != nil {
		s.logger.Debug("No manifest for deleted {Path}", path)
		return nil
	}
	return s.queue.Do(w.FilePath(), func() error {
		if wasDir {
			return w.RemoveDirectory(ctx, path)
		}
		return w.RemoveBuildAction(ctx, path)
	})
}

// HandleRenamed moves the build action of oldPath to newPath. The manifest
// is the one governing oldPath.
func (s *Syncer) HandleRenamed(ctx context.Context, oldPath, newPath string, isDir bool) error {
	observability.WatchEventsTotal.WithLabelValues("rename").Inc()
	w, err := s.writerFor(oldPath)
	if err != nil {
		s.logger.Debug("No manifest for renamed {Path}", oldPath)
		return nil
	}
	return s.queue.Do(w.FilePath(), func() error {
		if isDir {
			return w.RenameDirectory(ctx, oldPath, newPath)
		}
		return w.RenameBuildAction(ctx, oldPath, newPath)
	})
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
