package main

import (
	"net/http"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/filter"
	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/seo"
)

// ExploreHandler renders the full explore page, honouring q, district and
// tradition so filtered views are linkable.
func (a *app) ExploreHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	criteria := filter.ParseCriteria(r.URL.Query())
	view := buildExploreView(ds, criteria, mw.Lang(r))
	view.CSRFToken = mw.CSRFToken(r)
	a.metrics.ObserveFilter(len(view.Cards))

	vm := a.page(r, a.t(r, "explore.title"), a.t(r, "explore.description"))
	vm.SEO.AddJSONLD(seo.WebSite(a.site.Name, seo.Absolute(a.site.BaseURL, "/"), seo.Absolute(a.site.BaseURL, "/explore?q=")))
	if criteria.Active() {
		// filtered variants point at the unfiltered page
		vm.SEO.Robots = "noindex, follow"
	}
	vm.Explore = view
	a.renderPage(w, r, http.StatusOK, vm, "explore")
}

// ExploreResultsFrag re-renders only the grid for htmx filter changes and
// pushes the canonical filter URL into history.
func (a *app) ExploreResultsFrag(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	view := buildExploreView(ds, filter.ParseCriteria(r.URL.Query()), mw.Lang(r))
	view.CSRFToken = mw.CSRFToken(r)
	a.metrics.ObserveFilter(len(view.Cards))
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Push-Url", view.PushURL)
	}
	a.renderTemplate(w, r, "frag_explore_results", view)
}
