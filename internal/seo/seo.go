package seo

import (
	"net/url"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

type Twitter struct {
	Card  string
	Image string
}

type Alternate struct {
	Href     string
	Hreflang string
}

// Meta is everything the base layout renders into <head>.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []string
}

// Absolute joins baseURL and p. An empty baseURL yields p unchanged.
func Absolute(baseURL, p string) string {
	if baseURL == "" {
		return p
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(p, "/")
}

// New fills the title, description, canonical URL, Open Graph and Twitter
// fields consistently for one page.
func New(siteName, baseURL, path, title, description string) Meta {
	full := title
	if title == "" {
		full = siteName
	} else if siteName != "" && title != siteName {
		full = title + " | " + siteName
	}
	canonical := Absolute(baseURL, path)
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       full,
			Description: description,
			Type:        "website",
			URL:         canonical,
			SiteName:    siteName,
		},
		Twitter: Twitter{Card: "summary_large_image"},
	}
}

// WithImage sets the share image on both Open Graph and Twitter.
func (m Meta) WithImage(baseURL, src string) Meta {
	if src == "" {
		return m
	}
	img := src
	if u, err := url.Parse(src); err == nil && !u.IsAbs() {
		img = Absolute(baseURL, src)
	}
	m.OG.Image = img
	m.Twitter.Image = img
	return m
}

// AddJSONLD appends a marshalled schema.org object.
func (m *Meta) AddJSONLD(v any) {
	if s := JSON(v); s != "" {
		m.JSONLD = append(m.JSONLD, s)
	}
}

// AddAlternates emits one hreflang link per language using ?hl=.
func (m *Meta) AddAlternates(baseURL, path string, langs []string) {
	for _, l := range langs {
		m.Alternates = append(m.Alternates, Alternate{
			Href:     Absolute(baseURL, path) + "?hl=" + url.QueryEscape(l),
			Hreflang: l,
		})
	}
}
