package catalog

import "strings"

const bucketCap = 5

// Buckets are the three mutually exclusive similarity groups for a
// query product. Each bucket holds at most five product names in
// catalog order, and every slice is non-nil so the empty case
// serializes as [] rather than null.
type Buckets struct {
	SameBrand       []string `json:"same_brand"`
	Competitors     []string `json:"competitors"`
	SimilarCategory []string `json:"similar_category"`
}

// EmptyBuckets is the fail-soft result when the query product cannot
// be resolved or the catalog is unavailable.
func EmptyBuckets() Buckets {
	return Buckets{
		SameBrand:       []string{},
		Competitors:     []string{},
		SimilarCategory: []string{},
	}
}

// Match partitions the snapshot relative to the query product. Each
// entry lands in exactly one bucket, first match wins: same brand
// beats competitor beats same category. A product sharing both brand
// and category+tier with the query is therefore always same_brand.
// The query product itself is skipped case-insensitively.
func Match(queryName string, query Attributes, snap Snapshot) Buckets {
	queryKey := strings.ToLower(queryName)
	queryBrand := strings.ToLower(query.Brand)
	queryCategory := strings.ToLower(query.Category)
	queryTier := strings.ToLower(query.Tier)

	buckets := EmptyBuckets()
	for _, name := range snap.names {
		if name == queryKey {
			continue
		}
		attrs := snap.entries[name]
		brand := strings.ToLower(attrs.Brand)
		category := strings.ToLower(attrs.Category)
		tier := strings.ToLower(attrs.Tier)

		switch {
		case brand == queryBrand:
			buckets.SameBrand = appendCapped(buckets.SameBrand, name)
		case category == queryCategory && tier == queryTier:
			buckets.Competitors = appendCapped(buckets.Competitors, name)
		case category == queryCategory:
			buckets.SimilarCategory = appendCapped(buckets.SimilarCategory, name)
		}
	}
	return buckets
}

func appendCapped(bucket []string, name string) []string {
	if len(bucket) >= bucketCap {
		return bucket
	}
	return append(bucket, name)
}
