package project

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/willibrandon/gocsx/observability"
)

// Kind describes a manifest flavor: which files a reader accepts and which
// names the upward search looks for.
type Kind struct {
	Name       string
	Extensions []string
	Patterns   []string
}

// Manifest kinds.
var (
	CsprojKind = Kind{
		Name:       "csproj",
		Extensions: []string{".csproj", ".projitems"},
		Patterns:   []string{"*.csproj"},
	}
	ProjectJSONKind = Kind{
		Name:       "project.json",
		Extensions: []string{".json"},
		Patterns:   []string{"project.json"},
	}
)

// Supports reports whether manifestPath has one of the kind's extensions.
func (k Kind) Supports(manifestPath string) bool {
	ext := strings.ToLower(filepath.Ext(manifestPath))
	return slices.Contains(k.Extensions, ext)
}

// Find locates the nearest manifest of kind above start.
func Find(start string, kind Kind) (string, error) {
	return find(start, kind, kind.Patterns)
}

func find(start string, kind Kind, patterns []string) (string, error) {
	manifest, err := FindUpward(start, patterns...)
	if err != nil {
		return "", err
	}
	if !kind.Supports(manifest) {
		return "", fmt.Errorf("%w: %s is not a %s manifest", ErrNotFound, manifest, kind.Name)
	}
	return manifest, nil
}

// Reader is the metadata surface shared by every manifest kind.
type Reader interface {
	FilePath() string
	Kind() Kind
	// RootNamespace returns the declared root namespace. Unreadable or
	// malformed manifests report absent.
	RootNamespace(ctx context.Context) (string, bool)
}

var (
	_ Reader = (*CsprojReader)(nil)
	_ Reader = (*ProjectJSONReader)(nil)
)

// CsprojReader reads metadata from a .csproj or .projitems manifest. Every
// query parses the file again.
type CsprojReader struct {
	path string
	opts options
}

// NewCsprojReader returns a reader for manifestPath. The file is not read
// until a query runs.
func NewCsprojReader(manifestPath string, opts ...Option) (*CsprojReader, error) {
	if !CsprojKind.Supports(manifestPath) {
		return nil, &ArgumentError{Name: "manifestPath"}
	}
	return &CsprojReader{path: manifestPath, opts: newOptions(opts)}, nil
}

// FindCsprojReader returns a reader for the nearest .csproj above start.
func FindCsprojReader(start string, opts ...Option) (*CsprojReader, error) {
	manifest, err := Find(start, CsprojKind)
	if err != nil {
		return nil, err
	}
	return NewCsprojReader(manifest, opts...)
}

// FilePath returns the manifest path.
func (r *CsprojReader) FilePath() string {
	return r.path
}

// Kind returns CsprojKind.
func (r *CsprojReader) Kind() Kind {
	return CsprojKind
}

// Document reads and parses the manifest.
func (r *CsprojReader) Document(ctx context.Context) (doc *Document, err error) {
	_, span := observability.StartManifestSpan(ctx, "read", r.path)
	defer func() { observability.EndSpanWithError(span, err) }()

	data, err := r.opts.fs.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	doc, err = Parse(data)
	if err != nil {
		observability.ManifestParseFailures.WithLabelValues(CsprojKind.Name).Inc()
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return doc, nil
}

// property is the lookup behind the metadata queries.
func (r *CsprojReader) property(ctx context.Context, key string) (string, bool) {
	doc, err := r.Document(ctx)
	if err != nil {
		r.opts.logger.WarnContext(ctx, "Could not read {Property} from {ManifestPath}: {Error}", key, r.path, err)
		return "", false
	}
	if doc.Project == nil {
		return "", false
	}
	value, ok := doc.Project.Property(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// RootNamespace returns the first declared RootNamespace.
func (r *CsprojReader) RootNamespace(ctx context.Context) (string, bool) {
	return r.property(ctx, PropertyRootNamespace)
}

// TargetFramework returns the first declared TargetFramework.
func (r *CsprojReader) TargetFramework(ctx context.Context) (string, bool) {
	return r.property(ctx, PropertyTargetFramework)
}

// ImplicitUsings returns the first declared ImplicitUsings value.
func (r *CsprojReader) ImplicitUsings(ctx context.Context) (string, bool) {
	return r.property(ctx, PropertyImplicitUsings)
}

// HasImplicitUsings reports whether the manifest enables implicit global usings.
func (r *CsprojReader) HasImplicitUsings(ctx context.Context) bool {
	value, ok := r.ImplicitUsings(ctx)
	return ok && (strings.EqualFold(value, "enable") || strings.EqualFold(value, "true"))
}

var netVersionPattern = regexp.MustCompile(`(?i)net(\d+(?:\.\d+)*)`)

// IsTargetFrameworkAtLeastNet6 reports whether the target framework is .NET 6
// or later. ok is false when no target framework is declared.
func (r *CsprojReader) IsTargetFrameworkAtLeastNet6(ctx context.Context) (atLeast, ok bool) {
	tfm, ok := r.TargetFramework(ctx)
	if !ok {
		return false, false
	}
	return IsNet6OrLater(tfm), true
}

// IsNet6OrLater reports whether a target framework moniker names .NET 6 or
// later. The version must follow "net" directly, so netcoreapp3.1 and
// netstandard2.0 are below. Dotless monikers such as net48 are .NET Framework
// 4.8, not version 48, so a multi-digit major without a dot counts as below.
func IsNet6OrLater(tfm string) bool {
	m := netVersionPattern.FindStringSubmatch(tfm)
	if m == nil {
		return false
	}
	version := m[1]
	major, _, dotted := strings.Cut(version, ".")
	if !dotted && len(major) > 1 {
		return false
	}
	n, err := strconv.Atoi(major)
	if err != nil {
		return false
	}
	return n >= 6
}

// HasBuildActionsForFile reports whether itemPath is classified under any build action.
func (r *CsprojReader) HasBuildActionsForFile(ctx context.Context, itemPath string) (bool, error) {
	_, ok, err := r.BuildActionFor(ctx, itemPath)
	return ok, err
}

// BuildActionFor returns the build action itemPath is classified under.
func (r *CsprojReader) BuildActionFor(ctx context.Context, itemPath string) (BuildAction, bool, error) {
	include, err := IncludePath(r.path, itemPath)
	if err != nil {
		return 0, false, err
	}
	doc, err := r.Document(ctx)
	if err != nil {
		return 0, false, err
	}
	if doc.Project == nil {
		return 0, false, nil
	}
	_, it := doc.Project.FindItem(include)
	if it == nil {
		return 0, false, nil
	}
	return it.Action, true, nil
}

// Items returns every classified item of the manifest.
func (r *CsprojReader) Items(ctx context.Context) ([]*Item, error) {
	doc, err := r.Document(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Project == nil {
		return nil, nil
	}
	return doc.Project.Items(), nil
}
