package main

import (
	"net/http"

	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/seo"
)

// HomeHandler renders the landing page with the featured strip.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	view := buildHomeView(ds, a.cfg.Site.FeaturedCount, mw.Lang(r))

	vm := a.page(r, "", a.t(r, "home.description"))
	vm.SEO.AddJSONLD(seo.WebSite(a.site.Name, seo.Absolute(a.site.BaseURL, "/"), seo.Absolute(a.site.BaseURL, "/explore?q=")))
	if len(view.Featured) > 0 {
		vm.SEO = vm.SEO.WithImage(a.site.BaseURL, view.Featured[0].Cover)
		items := make([]map[string]any, 0, len(view.Featured))
		for _, c := range view.Featured {
			items = append(items, map[string]any{"name": c.Name, "url": seo.Absolute(a.site.BaseURL, c.PanoURL)})
		}
		vm.SEO.AddJSONLD(seo.ItemList(a.t(r, "home.featured"), items))
	}
	vm.Featured = view
	a.renderPage(w, r, http.StatusOK, vm, "home")
}
