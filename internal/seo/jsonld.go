package seo

import (
	"encoding/json"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// WebSite returns a minimal WebSite schema with optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// PlaceInput carries the fields rendered into a TouristAttraction schema.
type PlaceInput struct {
	Name        string
	Description string
	URL         string
	Images      []string
	Region      string
	Lat, Lng    *float64
}

// Place returns a schema.org TouristAttraction. Geo coordinates are emitted
// only when both are known.
func Place(in PlaceInput) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "TouristAttraction",
		"name":     in.Name,
	}
	if in.Description != "" {
		m["description"] = in.Description
	}
	if in.URL != "" {
		m["url"] = in.URL
	}
	if len(in.Images) > 0 {
		m["image"] = in.Images
	}
	if in.Region != "" {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": in.Region,
			"addressRegion":   "Sikkim",
			"addressCountry":  "IN",
		}
	}
	if in.Lat != nil && in.Lng != nil {
		m["geo"] = map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  *in.Lat,
			"longitude": *in.Lng,
		}
	}
	return m
}

// ItemList wraps places into a schema.org ItemList.
func ItemList(name string, items []map[string]any) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		entry := map[string]any{"@type": "ListItem", "position": i + 1}
		if u, ok := it["url"]; ok {
			entry["url"] = u
		}
		if n, ok := it["name"]; ok {
			entry["name"] = n
		}
		el = append(el, entry)
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"name":            name,
		"numberOfItems":   len(items),
		"itemListElement": el,
	}
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Article returns a minimal Article schema payload.
func Article(headline, url, imageURL, datePublished string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Article",
		"headline": headline,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if datePublished != "" {
		m["datePublished"] = datePublished
	}
	return m
}
