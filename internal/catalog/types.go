package catalog

import "time"

// Unverified marks an attribute field the lookup could not resolve.
const Unverified = "unverified"

// Attributes is the canonical structured description of a product,
// keyed in the catalog by lower-cased product name. Verified is true
// once every required field resolved to a real value.
type Attributes struct {
	Brand            string    `json:"brand"`
	Model            string    `json:"model,omitempty"`
	Category         string    `json:"category"`
	Tier             string    `json:"tier"`
	ReleaseYear      string    `json:"release_year"`
	PriceRange       string    `json:"price_range"`
	KeyFeatures      []string  `json:"key_features"`
	ConfidenceScore  string    `json:"confidence_score"`
	Verified         bool      `json:"verified"`
	VerificationDate time.Time `json:"verification_date,omitzero"`
	SourceURL        string    `json:"source_url,omitempty"`
}

// requiredFields are the attributes that must all resolve for a
// product to count as verified.
func (a Attributes) requiredFields() []string {
	return []string{a.Brand, a.Category, a.Tier, a.PriceRange, a.ReleaseYear}
}

// confidenceRank orders confidence scores for catalog search results.
func confidenceRank(score string) int {
	switch score {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	default:
		return 0
	}
}
