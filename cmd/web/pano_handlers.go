package main

import (
	"net/http"

	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/nav"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/seo"
)

// PanoHandler renders the 360° view for ?id=, falling back to the first record.
func (a *app) PanoHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	view := buildPanoView(ds, r.URL.Query().Get("id"), mw.Lang(r))

	title := a.t(r, "pano.title")
	if !view.NoData {
		title = view.Name + " · " + title
	}
	vm := a.page(r, title, view.Meta)
	if !view.NoData {
		rec, _ := ds.ByID(view.ID)
		vm.SEO.Canonical = seo.Absolute(a.site.BaseURL, panoURL(rec.ID))
		vm.SEO.OG.URL = vm.SEO.Canonical
		vm.SEO = vm.SEO.WithImage(a.site.BaseURL, rec.Cover())
		vm.SEO.AddJSONLD(seo.Place(seo.PlaceInput{
			Name:        rec.Name,
			Description: rec.Notes,
			URL:         vm.SEO.Canonical,
			Images:      rec.Images,
			Region:      rec.District,
			Lat:         rec.Lat,
			Lng:         rec.Lng,
		}))
		vm.Breadcrumbs = appendCrumb(vm.Breadcrumbs, rec.Name, panoURL(rec.ID))
		vm.SEO.AddJSONLD(a.breadcrumbJSONLD(r, vm.Breadcrumbs))
	}
	vm.Pano = view
	a.renderPage(w, r, http.StatusOK, vm, "pano")
}

// appendCrumb adds an active leaf after the section crumb.
func appendCrumb(crumbs []nav.Crumb, label, href string) []nav.Crumb {
	out := make([]nav.Crumb, 0, len(crumbs)+1)
	for _, c := range crumbs {
		c.Active = false
		out = append(out, c)
	}
	return append(out, nav.Crumb{Href: href, Label: label, Active: true})
}
