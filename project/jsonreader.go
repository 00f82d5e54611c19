package project

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"

	"github.com/willibrandon/gocsx/observability"
)

// ProjectJSONReader reads the legacy project.json manifest.
type ProjectJSONReader struct {
	path string
	opts options
}

type projectJSON struct {
	Tooling *struct {
		DefaultNamespace *string `json:"defaultNamespace"`
	} `json:"tooling"`
}

// NewProjectJSONReader returns a reader for manifestPath.
func NewProjectJSONReader(manifestPath string, opts ...Option) (*ProjectJSONReader, error) {
	if !ProjectJSONKind.Supports(manifestPath) {
		return nil, &ArgumentError{Name: "manifestPath"}
	}
	return &ProjectJSONReader{path: manifestPath, opts: newOptions(opts)}, nil
}

// FindProjectJSONReader returns a reader for the nearest project.json above start.
func FindProjectJSONReader(start string, opts ...Option) (*ProjectJSONReader, error) {
	manifest, err := Find(start, ProjectJSONKind)
	if err != nil {
		return nil, err
	}
	return NewProjectJSONReader(manifest, opts...)
}

// FilePath returns the manifest path.
func (r *ProjectJSONReader) FilePath() string {
	return r.path
}

// Kind returns ProjectJSONKind.
func (r *ProjectJSONReader) Kind() Kind {
	return ProjectJSONKind
}

func (r *ProjectJSONReader) read() (*projectJSON, error) {
	data, err := r.opts.fs.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	// project.json files in the wild carry comments and trailing commas.
	std, err := hujson.Standardize(data)
	if err != nil {
		observability.ManifestParseFailures.WithLabelValues(ProjectJSONKind.Name).Inc()
		return nil, fmt.Errorf("parse %s: %w: %w", r.path, ErrMalformedManifest, err)
	}
	var pj projectJSON
	if err := json.Unmarshal(std, &pj); err != nil {
		observability.ManifestParseFailures.WithLabelValues(ProjectJSONKind.Name).Inc()
		return nil, fmt.Errorf("parse %s: %w: %w", r.path, ErrMalformedManifest, err)
	}
	return &pj, nil
}

// RootNamespace returns tooling.defaultNamespace.
func (r *ProjectJSONReader) RootNamespace(ctx context.Context) (string, bool) {
	pj, err := r.read()
	if err != nil {
		r.opts.logger.WarnContext(ctx, "Could not read default namespace from {ManifestPath}: {Error}", r.path, err)
		return "", false
	}
	if pj.Tooling == nil || pj.Tooling.DefaultNamespace == nil || *pj.Tooling.DefaultNamespace == "" {
		return "", false
	}
	return *pj.Tooling.DefaultNamespace, true
}
