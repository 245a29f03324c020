package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/cms"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/format"
	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/nav"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/observability"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/seo"
)

// ContentView is the render model of a markdown page.
type ContentView struct {
	Page    cms.Page
	Updated string
}

// ContentPageHandler renders /pages/{slug} from the content store.
func (a *app) ContentPageHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	page, err := a.pages.Get(chi.URLParam(r, "slug"), lang)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			a.NotFoundHandler(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("content page failed", zap.Error(err))
		a.renderError(w, r, http.StatusInternalServerError, a.t(r, "error.generic"), "")
		return
	}

	title := page.Title
	if page.SEO.Title != "" {
		title = page.SEO.Title
	}
	desc := page.Summary
	if page.SEO.Description != "" {
		desc = page.SEO.Description
	}
	vm := a.page(r, title, desc)
	img := page.Image
	if page.SEO.OGImage != "" {
		img = page.SEO.OGImage
	}
	vm.SEO = vm.SEO.WithImage(a.site.BaseURL, img)
	vm.SEO.OG.Type = "article"
	published := ""
	if !page.UpdatedAt.IsZero() {
		published = page.UpdatedAt.Format("2006-01-02")
	}
	vm.SEO.AddJSONLD(seo.Article(page.Title, vm.SEO.Canonical, vm.SEO.OG.Image, published))
	vm.Breadcrumbs = nav.WithLeaf(vm.Breadcrumbs, page.Title)
	vm.SEO.AddJSONLD(a.breadcrumbJSONLD(r, vm.Breadcrumbs))
	vm.Content = ContentView{Page: page, Updated: format.FmtDate(page.UpdatedAt, lang)}
	a.renderPage(w, r, http.StatusOK, vm, "content")
}
