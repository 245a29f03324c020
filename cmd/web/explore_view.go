package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/filter"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
)

// ExploreView is the filterable grid: current criteria, facet options and the
// visible cards.
type ExploreView struct {
	Lang       string
	CSRFToken  string
	Criteria   filter.Criteria
	Districts  []FacetOption
	Traditions []FacetOption
	Cards      []ExploreCard
	Total      int
	Empty      bool
	// PushURL is the canonical address of the current filter state.
	PushURL string
}

// FacetOption is one <option> of a district or tradition select.
type FacetOption struct {
	Value    string
	Selected bool
}

// ExploreCard is one grid cell.
type ExploreCard struct {
	ID           int
	Name         string
	NameSegments []filter.Segment
	Caption      string
	Cover        string
	ModalURL     string
	PanoURL      string
}

// buildExploreView filters the dataset and derives the display fields. Facets
// always come from the full dataset so options do not shrink while filtering.
func buildExploreView(ds *gazetteer.Dataset, c filter.Criteria, lang string) ExploreView {
	all := ds.Records()
	facets := filter.BuildFacets(all)
	matched := filter.Apply(all, c)

	view := ExploreView{
		Lang:       lang,
		Criteria:   c,
		Districts:  facetOptions(facets.Districts, c.District),
		Traditions: facetOptions(facets.Traditions, c.Tradition),
		Total:      len(all),
		Empty:      len(matched) == 0,
		PushURL:    exploreURL(c),
	}
	view.Cards = make([]ExploreCard, 0, len(matched))
	for _, r := range matched {
		view.Cards = append(view.Cards, ExploreCard{
			ID:           r.ID,
			Name:         r.Name,
			NameSegments: filter.Highlight(r.Name, c.Query),
			Caption:      caption(r),
			Cover:        r.Cover(),
			ModalURL:     modalURL(r.ID),
			PanoURL:      panoURL(r.ID),
		})
	}
	return view
}

func facetOptions(values []string, selected string) []FacetOption {
	out := make([]FacetOption, 0, len(values))
	for _, v := range values {
		out = append(out, FacetOption{Value: v, Selected: v == selected})
	}
	return out
}

// caption renders "<district> • <tradition>".
func caption(r gazetteer.Record) string {
	return fmt.Sprintf("%s • %s", r.District, r.Tradition)
}

func exploreURL(c filter.Criteria) string {
	if q := c.Values().Encode(); q != "" {
		return "/explore?" + q
	}
	return "/explore"
}

func modalURL(id int) string {
	return "/monasteries/" + strconv.Itoa(id) + "/modal"
}

func panoURL(id int) string {
	return "/view360?" + url.Values{"id": {strconv.Itoa(id)}}.Encode()
}
