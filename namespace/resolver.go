// Package namespace derives the C# namespace for a new source file from the
// nearest project manifest or, failing that, from the directory layout.
package namespace

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gocsx/observability"
	"github.com/willibrandon/gocsx/project"
)

// Source names the tier that produced a namespace.
type Source string

// Resolution sources, in the order they are tried.
const (
	SourceCsproj      Source = "csproj"
	SourceProjectJSON Source = "project.json"
	SourceDirectory   Source = "directory"
)

// Resolution is a resolved namespace and where it came from.
type Resolution struct {
	Namespace string `json:"namespace"`
	Source    Source `json:"source"`
	// ManifestPath is the manifest that declared the root namespace or
	// anchored the directory fallback. Empty when neither was found.
	ManifestPath string `json:"manifestPath,omitempty"`
}

// Resolver resolves namespaces. The zero value is not usable; use NewResolver.
type Resolver struct {
	roots       []string
	logger      observability.Logger
	projectOpts []project.Option
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkspaceRoots sets the folders used as the last-resort namespace
// root. Only the first one is consulted. Relative roots are taken from the
// working directory.
func WithWorkspaceRoots(roots ...string) Option {
	return func(r *Resolver) {
		for _, root := range roots {
			if root == "" {
				continue
			}
			if abs, err := filepath.Abs(root); err == nil {
				root = abs
			}
			r.roots = append(r.roots, filepath.Clean(root))
		}
	}
}

// WithLogger sets the logger used by the resolver and the manifest readers it creates.
func WithLogger(logger observability.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithProjectOptions passes options to the manifest readers.
func WithProjectOptions(opts ...project.Option) Option {
	return func(r *Resolver) {
		r.projectOpts = append(r.projectOpts, opts...)
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: observability.NewNullLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the namespace for filePath. It never fails; the worst case is "".
func (r *Resolver) Resolve(ctx context.Context, filePath string) string {
	return r.ResolveDetailed(ctx, filePath).Namespace
}

// ResolveDetailed is Resolve reporting which tier answered.
func (r *Resolver) ResolveDetailed(ctx context.Context, filePath string) Resolution {
	ctx, span := observability.StartNamespaceResolveSpan(ctx, filePath)
	defer span.End()

	if abs, err := filepath.Abs(filePath); err == nil {
		filePath = abs
	}

	res := r.resolve(ctx, filePath)

	observability.NamespaceResolutionsTotal.WithLabelValues(string(res.Source)).Inc()
	observability.RecordNamespace(ctx, res.Namespace, string(res.Source))
	r.logger.Debug("Resolved namespace {Namespace} for {FilePath} from {Source}", res.Namespace, filePath, res.Source)
	return res
}

func (r *Resolver) resolve(ctx context.Context, filePath string) Resolution {
	opts := append([]project.Option{project.WithLogger(r.logger)}, r.projectOpts...)

	// Manifests found without a usable namespace still anchor the directory fallback.
	var anchors []string

	if csproj, err := project.FindCsprojReader(filePath, opts...); err == nil {
		anchors = append(anchors, csproj.FilePath())
		if ns, ok := csproj.RootNamespace(ctx); ok {
			return Resolution{
				Namespace:    FullNamespace(ns, filepath.Dir(csproj.FilePath()), filePath),
				Source:       SourceCsproj,
				ManifestPath: csproj.FilePath(),
			}
		}
	}

	if pj, err := project.FindProjectJSONReader(filePath, opts...); err == nil {
		anchors = append(anchors, pj.FilePath())
		if ns, ok := pj.RootNamespace(ctx); ok {
			return Resolution{
				Namespace:    FullNamespace(ns, filepath.Dir(pj.FilePath()), filePath),
				Source:       SourceProjectJSON,
				ManifestPath: pj.FilePath(),
			}
		}
	}

	res := Resolution{Source: SourceDirectory}
	root := ""
	switch {
	case len(anchors) > 0:
		res.ManifestPath = anchors[0]
		root = grandparent(anchors[0])
	case len(r.roots) > 0:
		root = r.roots[0]
	}
	res.Namespace = strings.TrimPrefix(FullNamespace("", root, filePath), ".")
	return res
}

// FullNamespace appends to rootNamespace one segment for every directory of
// filePath below rootDir. Segments are counted, not compared, so rootDir is
// expected to be an ancestor of filePath.
func FullNamespace(rootNamespace, rootDir, filePath string) string {
	sep := string(filepath.Separator)
	fileSegments := strings.Split(strings.TrimSuffix(filepath.Dir(filePath), sep), sep)
	rootSegments := strings.Split(strings.TrimSuffix(rootDir, sep), sep)

	var b strings.Builder
	b.WriteString(rootNamespace)
	for i := len(rootSegments); i < len(fileSegments); i++ {
		b.WriteByte('.')
		b.WriteString(fileSegments[i])
	}
	return b.String()
}

// grandparent drops the last two segments of manifestPath.
func grandparent(manifestPath string) string {
	sep := string(filepath.Separator)
	segments := strings.Split(manifestPath, sep)
	if len(segments) <= 2 {
		return ""
	}
	return strings.Join(segments[:len(segments)-2], sep)
}
