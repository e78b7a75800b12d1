package catalog

import (
	"context"
	"log/slog"
)

// SnapshotLoader produces a fresh catalog snapshot. Implemented by the
// persistence layer; the finder never reads live state mid-match.
type SnapshotLoader interface {
	LoadSnapshot() (Snapshot, error)
}

// Finder is the similar-products entry point: resolve the query
// product's attributes, take one catalog snapshot, and match against
// it.
type Finder struct {
	resolver *Resolver
	loader   SnapshotLoader
}

func NewFinder(resolver *Resolver, loader SnapshotLoader) *Finder {
	return &Finder{resolver: resolver, loader: loader}
}

// Similar returns the bucketed neighbors of a product. Every failure
// mode degrades to three empty buckets; the caller always receives a
// well-formed value.
func (f *Finder) Similar(ctx context.Context, name string) Buckets {
	snap, err := f.loader.LoadSnapshot()
	if err != nil {
		slog.Warn("catalog snapshot load failed", "product", name, "error", err)
		return EmptyBuckets()
	}

	attrs, ok := f.resolver.Resolve(ctx, name)
	if !ok {
		slog.Info("query product unresolved, returning empty buckets", "product", name)
		return EmptyBuckets()
	}

	return Match(name, attrs, snap)
}
