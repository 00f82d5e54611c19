package project

import (
	"context"
	"fmt"
	"path/filepath"
)

// Info summarizes the manifest that governs a path.
type Info struct {
	ManifestPath    string `json:"manifestPath" yaml:"manifestPath"`
	Kind            string `json:"kind" yaml:"kind"`
	RootNamespace   string `json:"rootNamespace,omitempty" yaml:"rootNamespace,omitempty"`
	TargetFramework string `json:"targetFramework,omitempty" yaml:"targetFramework,omitempty"`
	Net6OrLater     bool   `json:"net6OrLater" yaml:"net6OrLater"`
	ImplicitUsings  bool   `json:"implicitUsings" yaml:"implicitUsings"`
	ItemCount       int    `json:"itemCount" yaml:"itemCount"`
}

// Describe reports on the nearest .csproj above path, falling back to a
// project.json. A directory path is searched from inside.
func Describe(ctx context.Context, path string, opts ...Option) (*Info, error) {
	o := newOptions(opts)
	start := path
	if o.fs.IsDir(path) {
		// FindUpward searches from the directory containing its argument.
		start = filepath.Join(path, "_")
	}

	if r, err := FindCsprojReader(start, opts...); err == nil {
		info := &Info{ManifestPath: r.FilePath(), Kind: CsprojKind.Name}
		info.RootNamespace, _ = r.RootNamespace(ctx)
		info.TargetFramework, _ = r.TargetFramework(ctx)
		info.Net6OrLater, _ = r.IsTargetFrameworkAtLeastNet6(ctx)
		info.ImplicitUsings = r.HasImplicitUsings(ctx)
		if items, err := r.Items(ctx); err == nil {
			info.ItemCount = len(items)
		}
		return info, nil
	}

	r, err := FindProjectJSONReader(start, opts...)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	info := &Info{ManifestPath: r.FilePath(), Kind: ProjectJSONKind.Name}
	info.RootNamespace, _ = r.RootNamespace(ctx)
	return info, nil
}
