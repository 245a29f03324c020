package main

import (
	"errors"
	"html/template"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/cms"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/config"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/handlers"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/i18n"
	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/nav"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/observability"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/seo"
)

// app holds the process-wide collaborators shared by every handler.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	loader  *gazetteer.Loader
	bundle  *i18n.Bundle
	pages   *cms.Store
	site    handlers.Site

	tmplMu    sync.Mutex
	tmplCache *template.Template
}

type appDeps struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Loader  *gazetteer.Loader
	Bundle  *i18n.Bundle
	Pages   *cms.Store
}

func newApp(cfg config.Config, deps appDeps) (*app, error) {
	if deps.Loader == nil || deps.Bundle == nil {
		return nil, errors.New("web: loader and i18n bundle are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics()
	}
	if deps.Pages == nil {
		deps.Pages = cms.NewStore(cfg.Paths.Content, cfg.I18n.Default, contentCacheTTL)
	}
	mw.ConfigureSessions(cfg.Session.SigningKey, cfg.Session.Secure)

	a := &app{
		cfg:     cfg,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		loader:  deps.Loader,
		bundle:  deps.Bundle,
		pages:   deps.Pages,
		site: handlers.Site{
			Name:      cfg.Site.Name,
			BaseURL:   cfg.Site.BaseURL,
			Langs:     deps.Bundle.Supported(),
			Analytics: handlers.AnalyticsFromConfig(cfg.Analytics),
		},
	}
	if !cfg.Server.Dev {
		// parse once in production; dev mode reparses per request
		t, err := a.parseTemplates()
		if err != nil {
			return nil, err
		}
		a.tmplCache = t
	}
	return a, nil
}

// page builds the shared layout fields for the current request.
func (a *app) page(r *http.Request, title, description string) handlers.PageData {
	return handlers.NewPage(a.site, mw.Lang(r), r.URL.Path, title, description, mw.CSRFToken(r))
}

// t translates key for the request language.
func (a *app) t(r *http.Request, key string) string {
	return a.bundle.T(mw.Lang(r), key)
}

// breadcrumbJSONLD mirrors the visible trail as a schema.org BreadcrumbList.
func (a *app) breadcrumbJSONLD(r *http.Request, crumbs []nav.Crumb) map[string]any {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = a.t(r, c.LabelKey)
		}
		items = append(items, seo.BreadcrumbItem{Name: name, Item: seo.Absolute(a.site.BaseURL, c.Href)})
	}
	return seo.BreadcrumbList(items)
}

// dataset returns the loaded gazetteer or writes a 503 response. Full pages
// get the error layout with a retry link; htmx fragments get a short message.
func (a *app) dataset(w http.ResponseWriter, r *http.Request) (*gazetteer.Dataset, bool) {
	ds, err := a.loader.Load(r.Context())
	if err == nil {
		return ds, true
	}
	observability.FromContext(r.Context()).Error("dataset unavailable", zap.Error(err))
	w.Header().Set("Retry-After", "5")
	if mw.IsHTMX(r.Context()) {
		mw.WriteError(w, r, http.StatusServiceUnavailable, a.t(r, "error.dataset"))
		return nil, false
	}
	a.renderError(w, r, http.StatusServiceUnavailable, a.t(r, "error.dataset"), r.URL.RequestURI())
	return nil, false
}
