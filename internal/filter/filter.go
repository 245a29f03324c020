// Package filter computes the visible subset of gazetteer records and the
// facet options offered next to the search box.
package filter

import (
	"net/url"
	"strings"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
)

// Criteria holds the three explore inputs. Empty fields are inactive.
type Criteria struct {
	Query     string
	District  string
	Tradition string
}

// ParseCriteria reads q, district and tradition from query parameters.
func ParseCriteria(v url.Values) Criteria {
	return Criteria{
		Query:     v.Get("q"),
		District:  v.Get("district"),
		Tradition: v.Get("tradition"),
	}
}

// Term returns the lowercased search term, or "" when the query is blank.
// Surrounding whitespace is part of a non-blank term.
func (c Criteria) Term() string {
	if strings.TrimSpace(c.Query) == "" {
		return ""
	}
	return strings.ToLower(c.Query)
}

// Active reports whether any predicate is in effect.
func (c Criteria) Active() bool {
	return c.Term() != "" || c.District != "" || c.Tradition != ""
}

// Values encodes the active criteria, omitting empty fields.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if strings.TrimSpace(c.Query) != "" {
		v.Set("q", c.Query)
	}
	if c.District != "" {
		v.Set("district", c.District)
	}
	if c.Tradition != "" {
		v.Set("tradition", c.Tradition)
	}
	return v
}

// Corpus is the lowercase text searched by the query predicate.
func Corpus(r gazetteer.Record) string {
	return strings.ToLower(r.Name) + " " + strings.ToLower(r.Notes)
}

// Match reports whether r passes every active predicate in c.
func Match(r gazetteer.Record, c Criteria) bool {
	if term := c.Term(); term != "" && !strings.Contains(Corpus(r), term) {
		return false
	}
	if c.District != "" && r.District != c.District {
		return false
	}
	if c.Tradition != "" && r.Tradition != c.Tradition {
		return false
	}
	return true
}

// Apply returns the records matching c in their original order. The input is
// not modified.
func Apply(records []gazetteer.Record, c Criteria) []gazetteer.Record {
	out := make([]gazetteer.Record, 0, len(records))
	for _, r := range records {
		if Match(r, c) {
			out = append(out, r)
		}
	}
	return out
}
