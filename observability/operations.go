package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the tracer name for gocsx operations
	TracerName = "github.com/willibrandon/gocsx"
)

// Common attribute keys
const (
	AttrManifestPath = attribute.Key("csx.manifest.path")
	AttrItemPath     = attribute.Key("csx.item.path")
	AttrBuildAction  = attribute.Key("csx.build_action")
	AttrOperation    = attribute.Key("csx.operation")
	AttrItemCount    = attribute.Key("csx.item.count")
	AttrNamespace    = attribute.Key("csx.namespace")
	AttrSource       = attribute.Key("csx.namespace.source")
	AttrTemplate     = attribute.Key("csx.template")
)

// StartManifestSpan starts a span for a read-modify-write of a project manifest.
func StartManifestSpan(ctx context.Context, operation, manifestPath string) (context.Context, trace.Span) {
	return StartSpan(ctx, "manifest."+operation,
		trace.WithAttributes(
			AttrOperation.String(operation),
			AttrManifestPath.String(manifestPath),
		),
	)
}

// StartNamespaceResolveSpan starts a span for resolving the namespace of a file.
func StartNamespaceResolveSpan(ctx context.Context, filePath string) (context.Context, trace.Span) {
	return StartSpan(ctx, "namespace.resolve",
		trace.WithAttributes(
			AttrItemPath.String(filePath),
			AttrOperation.String("resolve"),
		),
	)
}

// RecordNamespace records the resolved namespace and the tier that produced it.
func RecordNamespace(ctx context.Context, namespace, source string) {
	SetAttributes(ctx, AttrNamespace.String(namespace), AttrSource.String(source))
}

// StartScaffoldSpan starts a span for creating files from a template.
func StartScaffoldSpan(ctx context.Context, template, targetPath string) (context.Context, trace.Span) {
	return StartSpan(ctx, "template.scaffold",
		trace.WithAttributes(
			AttrTemplate.String(template),
			AttrItemPath.String(targetPath),
			AttrOperation.String("scaffold"),
		),
	)
}

// StartWatchBatchSpan starts a span for one debounced batch of filesystem changes.
func StartWatchBatchSpan(ctx context.Context, kind string, count int) (context.Context, trace.Span) {
	return StartSpan(ctx, "watch."+kind,
		trace.WithAttributes(
			AttrOperation.String(kind),
			AttrItemCount.Int(count),
		),
	)
}

// EndSpanWithError ends a span and records error if present
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
