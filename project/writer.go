package project

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/willibrandon/gocsx/observability"
)

// SharedPattern is the search pattern for shared manifests.
const SharedPattern = "*.projitems"

// Writer mutates the build actions of a .csproj or .projitems manifest.
// Every operation reads the file, applies the change in memory and writes
// the result back in one step. A Writer does not serialize concurrent calls
// for the same manifest; callers must.
type Writer struct {
	*CsprojReader
}

// NewWriter returns a writer for manifestPath.
func NewWriter(manifestPath string, opts ...Option) (*Writer, error) {
	r, err := NewCsprojReader(manifestPath, opts...)
	if err != nil {
		return nil, err
	}
	return &Writer{CsprojReader: r}, nil
}

// FindWriter returns a writer for the nearest manifest above start. With
// includeShared a .projitems file wins over a .csproj in the same directory.
func FindWriter(start string, includeShared bool, opts ...Option) (*Writer, error) {
	patterns := CsprojKind.Patterns
	if includeShared {
		patterns = append([]string{SharedPattern}, patterns...)
	}
	manifest, err := find(start, CsprojKind, patterns)
	if err != nil {
		return nil, err
	}
	return NewWriter(manifest, opts...)
}

// AddBuildAction classifies itemPath as action, replacing any previous classification.
func (w *Writer) AddBuildAction(ctx context.Context, itemPath string, action BuildAction) error {
	return w.AddBuildActions(ctx, []string{itemPath}, action)
}

// AddBuildActions classifies every path as action with a single read and write.
// Nothing is written when any path cannot be expressed relative to the manifest.
func (w *Writer) AddBuildActions(ctx context.Context, itemPaths []string, action BuildAction) error {
	if !action.IsValid() {
		return &ArgumentError{Name: "buildAction"}
	}
	items := make([]Classification, 0, len(itemPaths))
	for _, p := range itemPaths {
		items = append(items, Classification{Path: p, Action: action})
	}
	return w.Classify(ctx, items)
}

// Classification pairs an item path with its build action.
type Classification struct {
	Path   string
	Action BuildAction
}

// Classify applies every classification with a single read and write. It is
// AddBuildActions for batches that mix build actions.
func (w *Writer) Classify(ctx context.Context, items []Classification) error {
	if len(items) == 0 {
		return nil
	}

	type entry struct {
		include string
		action  BuildAction
	}
	entries := make([]entry, 0, len(items))
	for _, c := range items {
		if !c.Action.IsValid() {
			return &ArgumentError{Name: "buildAction"}
		}
		include, err := IncludePath(w.path, c.Path)
		if err != nil {
			return err
		}
		entries = append(entries, entry{include, c.Action})
	}

	return w.mutate(ctx, "add", func(p *Project) int {
		for _, e := range entries {
			addItem(p, e.include, e.action)
			w.opts.logger.Debug("Classified {Include} as {BuildAction} in {ManifestPath}", e.include, e.action, w.path)
		}
		return len(entries)
	})
}

func addItem(p *Project, include string, action BuildAction) {
	// A path already classified is reclassified in place.
	group, _ := p.FindItem(include)
	for _, ig := range p.ItemGroups() {
		ig.removeItems(func(it *Item) bool { return SameIncludePath(it.Include, include) })
	}

	it := NewItem(action, include)
	switch action {
	case BuildActionCompile:
		if sibling, ok := strings.CutSuffix(include, ".cs"); ok && strings.HasSuffix(strings.ToLower(sibling), ".xaml") {
			if _, page := p.FindItem(sibling); page != nil && page.Action == BuildActionPage {
				it.DependentUpon = includeBase(sibling)
			}
		}
	case BuildActionPage:
		it.SubType = PageSubType
		it.Generator = PageGenerator
	}

	if group != nil {
		group.Add(it)
	} else {
		p.AddItem(it)
	}
	p.PruneItemGroups()
}

// includeBase returns the file name of an include path.
func includeBase(include string) string {
	return path.Base(strings.TrimPrefix(normalizeInclude(include), SharedProjectDirToken))
}

// RemoveBuildAction removes the classification of itemPath. When itemPath is
// a directory every item below it is removed too.
func (w *Writer) RemoveBuildAction(ctx context.Context, itemPath string) error {
	return w.remove(ctx, itemPath, w.opts.fs.IsDir(itemPath))
}

// RemoveDirectory removes every item below dirPath. It does not need dirPath to exist.
func (w *Writer) RemoveDirectory(ctx context.Context, dirPath string) error {
	return w.remove(ctx, dirPath, true)
}

func (w *Writer) remove(ctx context.Context, itemPath string, isDir bool) error {
	include, err := IncludePath(w.path, itemPath)
	if err != nil {
		return err
	}
	return w.mutate(ctx, "remove", func(p *Project) int {
		return p.RemoveItems(func(it *Item) bool {
			return SameIncludePath(it.Include, include) || (isDir && HasIncludePrefix(it.Include, include))
		})
	})
}

// RenameBuildAction moves the classification of oldPath to newPath. Renaming
// a directory rewrites every item below it. The rename has usually happened
// on disk already, so either path being a directory counts.
func (w *Writer) RenameBuildAction(ctx context.Context, oldPath, newPath string) error {
	return w.rename(ctx, oldPath, newPath, w.opts.fs.IsDir(oldPath) || w.opts.fs.IsDir(newPath))
}

// RenameDirectory rewrites every item below oldDir to live below newDir.
func (w *Writer) RenameDirectory(ctx context.Context, oldDir, newDir string) error {
	return w.rename(ctx, oldDir, newDir, true)
}

func (w *Writer) rename(ctx context.Context, oldPath, newPath string, isDir bool) error {
	oldInclude, err := IncludePath(w.path, oldPath)
	if err != nil {
		return err
	}
	newInclude, err := IncludePath(w.path, newPath)
	if err != nil {
		return err
	}
	return w.mutate(ctx, "rename", func(p *Project) int {
		// Items being moved, mapped to their new include path.
		moved := make(map[*Item]string)
		for _, it := range p.Items() {
			switch {
			case SameIncludePath(it.Include, oldInclude):
				moved[it] = newInclude
			case isDir && HasIncludePrefix(it.Include, oldInclude):
				moved[it] = RewriteIncludePrefix(it.Include, oldInclude, newInclude)
			}
		}
		if len(moved) == 0 {
			return 0
		}

		// The rename replaced whatever was classified at the destination.
		targets := make(map[string]bool, len(moved))
		for _, include := range moved {
			targets[normalizeInclude(include)] = true
		}
		replaced := p.RemoveItems(func(it *Item) bool {
			_, moving := moved[it]
			return !moving && targets[normalizeInclude(it.Include)]
		})

		changed := replaced
		seen := make(map[string]bool, len(moved))
		duplicate := make(map[*Item]bool)
		for _, it := range p.Items() {
			include, ok := moved[it]
			if !ok {
				continue
			}
			key := normalizeInclude(include)
			if seen[key] {
				duplicate[it] = true
				continue
			}
			seen[key] = true
			if it.Include != include {
				it.Include = include
				changed++
			}
		}
		if len(duplicate) > 0 {
			changed += p.RemoveItems(func(it *Item) bool { return duplicate[it] })
		}
		return changed
	})
}

// mutate runs a read-modify-write cycle. fn returns the number of changed
// items; nothing is written when it is zero.
func (w *Writer) mutate(ctx context.Context, op string, fn func(p *Project) int) (err error) {
	start := time.Now()
	ctx, span := observability.StartManifestSpan(ctx, op, w.path)
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
			w.opts.logger.Error("Manifest {Operation} failed for {ManifestPath}: {Error}", op, w.path, err)
		}
		observability.ManifestOperationsTotal.WithLabelValues(op, status).Inc()
		observability.ManifestOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		observability.EndSpanWithError(span, err)
	}()

	doc, err := w.Document(ctx)
	if err != nil {
		return err
	}
	if doc.Project == nil {
		return fmt.Errorf("%s %s: %w", op, w.path, ErrCorruptDocument)
	}

	changed := fn(doc.Project)
	if changed == 0 {
		w.opts.logger.Debug("Manifest {Operation} changed nothing in {ManifestPath}", op, w.path)
		return nil
	}

	data, err := doc.Bytes()
	if err != nil {
		return err
	}
	if err := w.opts.fs.WriteFile(w.path, data); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}

	observability.ManifestItemsChanged.WithLabelValues(op).Add(float64(changed))
	w.opts.logger.Info("Manifest {Operation} updated {Count} item(s) in {ManifestPath}", op, changed, w.path)
	return nil
}
