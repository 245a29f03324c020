package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/explore"
	LabelKey string // i18n key, e.g. "nav.explore"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/explore", LabelKey: "nav.explore"},
	{Path: "/map", LabelKey: "nav.map"},
	{Path: "/view360", LabelKey: "nav.view360"},
	{Path: "/pages/about", LabelKey: "nav.about"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds the trail Home > section > ... for currentPath. Known
// sections use their nav label key; other segments are prettified.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, seg := range parts {
		if seg == "" {
			continue
		}
		href += "/" + seg
		c := Crumb{Href: href, Label: titleFromSegment(seg), Active: i == len(parts)-1}
		for _, it := range Main {
			if it.Path == href {
				c.LabelKey = it.LabelKey
				break
			}
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// WithLeaf replaces the label of the last crumb, e.g. with a page title.
func WithLeaf(crumbs []Crumb, label string) []Crumb {
	if len(crumbs) < 2 || label == "" {
		return crumbs
	}
	out := append([]Crumb(nil), crumbs...)
	last := &out[len(out)-1]
	last.LabelKey = ""
	last.Label = label
	return out
}

func titleFromSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
