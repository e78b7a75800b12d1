package catalog

import (
	"context"
	"log/slog"
	"time"
)

// ProductStore persists canonical attributes keyed by lower-cased
// product name.
type ProductStore interface {
	GetProduct(name string) (Attributes, bool, error)
	SaveProduct(name string, attrs Attributes) error
}

// AttributeClient resolves a product name to canonical attributes via
// an external capability. It returns the canonical name the capability
// identified, which may differ in casing or completeness from the
// query.
type AttributeClient interface {
	Lookup(ctx context.Context, name string) (string, Attributes, error)
}

// Resolver answers "what is this product" with a store-first strategy:
// a verified stored record short-circuits the external lookup, and
// fresh lookups are validated and written through.
type Resolver struct {
	store  ProductStore
	client AttributeClient
}

func NewResolver(store ProductStore, client AttributeClient) *Resolver {
	return &Resolver{store: store, client: client}
}

// Resolve returns the canonical attributes for a product name, or
// ok=false when neither the store nor the lookup can answer. It never
// returns an error; resolution failure degrades to "not found".
func (r *Resolver) Resolve(ctx context.Context, name string) (Attributes, bool) {
	if r.store != nil {
		stored, ok, err := r.store.GetProduct(name)
		if err != nil {
			slog.Warn("product store lookup failed, falling back to live resolution",
				"product", name, "error", err)
		} else if ok && stored.Verified {
			return stored, true
		}
	}

	canonical, attrs, err := r.client.Lookup(ctx, name)
	if err != nil {
		slog.Warn("attribute lookup failed", "product", name, "error", err)
		return Attributes{}, false
	}
	if canonical == "" {
		canonical = name
	}
	attrs = validateAttributes(attrs)

	if r.store != nil {
		if err := r.store.SaveProduct(canonical, attrs); err != nil {
			slog.Warn("product store write failed",
				"product", canonical, "error", err)
		}
	}
	return attrs, true
}

// validateAttributes normalizes a fresh lookup result: missing string
// fields become "unverified", missing confidence defaults to "low",
// key features never stay nil, and Verified is recomputed from the
// required fields.
func validateAttributes(attrs Attributes) Attributes {
	if attrs.Brand == "" {
		attrs.Brand = Unverified
	}
	if attrs.Category == "" {
		attrs.Category = Unverified
	}
	if attrs.Tier == "" {
		attrs.Tier = Unverified
	}
	if attrs.PriceRange == "" {
		attrs.PriceRange = Unverified
	}
	if attrs.ReleaseYear == "" {
		attrs.ReleaseYear = Unverified
	}
	if attrs.ConfidenceScore == "" {
		attrs.ConfidenceScore = "low"
	}
	if attrs.KeyFeatures == nil {
		attrs.KeyFeatures = []string{}
	}

	attrs.Verified = true
	for _, field := range attrs.requiredFields() {
		if field == Unverified {
			attrs.Verified = false
			break
		}
	}
	attrs.VerificationDate = time.Now().UTC()
	return attrs
}
