package catalog

import (
	"sort"
	"strings"
)

// Snapshot is an immutable view of the product catalog taken at one
// point in time. A match call only ever sees the snapshot it was
// handed; the host refreshes by loading a new snapshot and swapping it,
// never by mutating one in place.
type Snapshot struct {
	entries map[string]Attributes
	names   []string
}

// Entry pairs a catalog name with its attributes in search results.
type Entry struct {
	Name string `json:"name"`
	Attributes
}

// NewSnapshot builds a snapshot from a name -> attributes mapping.
// Keys are lower-cased and iteration order is by name.
func NewSnapshot(products map[string]Attributes) Snapshot {
	entries := make(map[string]Attributes, len(products))
	names := make([]string, 0, len(products))
	for name, attrs := range products {
		key := strings.ToLower(name)
		if _, seen := entries[key]; !seen {
			names = append(names, key)
		}
		entries[key] = attrs
	}
	sort.Strings(names)
	return Snapshot{entries: entries, names: names}
}

// Get looks a product up by name, case-insensitively.
func (s Snapshot) Get(name string) (Attributes, bool) {
	attrs, ok := s.entries[strings.ToLower(name)]
	return attrs, ok
}

// Len reports the number of catalog entries.
func (s Snapshot) Len() int { return len(s.names) }

// SearchByCategory returns every product in the given category, best
// first: verified entries before unverified, then by confidence score.
func (s Snapshot) SearchByCategory(category string) []Entry {
	category = strings.ToLower(category)
	return s.search(func(a Attributes) bool {
		return strings.ToLower(a.Category) == category
	})
}

// SearchByBrand returns every product of the given brand, best first.
func (s Snapshot) SearchByBrand(brand string) []Entry {
	brand = strings.ToLower(brand)
	return s.search(func(a Attributes) bool {
		return strings.ToLower(a.Brand) == brand
	})
}

func (s Snapshot) search(match func(Attributes) bool) []Entry {
	found := []Entry{}
	for _, name := range s.names {
		if attrs := s.entries[name]; match(attrs) {
			found = append(found, Entry{Name: name, Attributes: attrs})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Verified != found[j].Verified {
			return found[i].Verified
		}
		return confidenceRank(found[i].ConfidenceScore) > confidenceRank(found[j].ConfidenceScore)
	})
	return found
}

// Categories returns the sorted set of distinct categories.
func (s Snapshot) Categories() []string {
	return s.distinct(func(a Attributes) string { return a.Category })
}

// Brands returns the sorted set of distinct brands.
func (s Snapshot) Brands() []string {
	return s.distinct(func(a Attributes) string { return a.Brand })
}

func (s Snapshot) distinct(field func(Attributes) string) []string {
	seen := make(map[string]struct{})
	values := []string{}
	for _, attrs := range s.entries {
		v := field(attrs)
		if v == "" || v == Unverified {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
