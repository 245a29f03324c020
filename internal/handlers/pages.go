package handlers

import (
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/nav"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/seo"
)

// PageData is the view model for every page rendered through the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Langs     []string
	SiteName  string
	SEO       seo.Meta
	Analytics Analytics
	CSRFToken string

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// Optional per-page view model payloads
	Featured any
	Explore  any
	Detail   any
	Map      any
	Pano     any
	Content  any
	Error    *ErrorData
}

// ErrorData drives the shared error page.
type ErrorData struct {
	Status   int
	Message  string
	RetryURL string
}

// Site carries the per-process values every page needs.
type Site struct {
	Name      string
	BaseURL   string
	Langs     []string
	Analytics Analytics
}

// NewPage fills the layout fields for path; callers set the payload and may
// refine SEO afterwards.
func NewPage(site Site, lang, path, title, description, csrf string) PageData {
	meta := seo.New(site.Name, site.BaseURL, path, title, description)
	if len(site.Langs) > 1 {
		meta.AddAlternates(site.BaseURL, path, site.Langs)
	}
	if title == "" {
		title = site.Name
	}
	return PageData{
		Title:       title,
		Lang:        lang,
		Langs:       site.Langs,
		SiteName:    site.Name,
		SEO:         meta,
		Analytics:   site.Analytics,
		CSRFToken:   csrf,
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: nav.Breadcrumbs(path),
	}
}
