package filter

import (
	"sort"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
)

// Facets lists the distinct district and tradition values of a dataset.
type Facets struct {
	Districts  []string
	Traditions []string
}

// BuildFacets collects every distinct district and tradition across records,
// each once, sorted ascending.
func BuildFacets(records []gazetteer.Record) Facets {
	districts := make(map[string]struct{})
	traditions := make(map[string]struct{})
	for _, r := range records {
		districts[r.District] = struct{}{}
		traditions[r.Tradition] = struct{}{}
	}
	return Facets{
		Districts:  sortedKeys(districts),
		Traditions: sortedKeys(traditions),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
