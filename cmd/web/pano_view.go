package main

import (
	"strconv"
	"strings"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
)

// PanoViewer is the configuration handed to the panorama library.
type PanoViewer struct {
	Type               string  `json:"type"`
	Panorama           string  `json:"panorama"`
	AutoLoad           bool    `json:"autoLoad"`
	AutoRotate         float64 `json:"autoRotate"`
	Compass            bool    `json:"compass"`
	ShowFullscreenCtrl bool    `json:"showFullscreenCtrl"`
	ShowControls       bool    `json:"showControls"`
}

func newPanoViewer(src string) *PanoViewer {
	return &PanoViewer{
		Type:               "equirectangular",
		Panorama:           src,
		AutoLoad:           true,
		AutoRotate:         -2,
		Compass:            false,
		ShowFullscreenCtrl: true,
		ShowControls:       true,
	}
}

// PanoView is the render model of the 360° page.
type PanoView struct {
	Lang string
	// NoData is set when the dataset is empty and nothing can be shown.
	NoData bool
	ID     int
	Name   string
	Meta   string
	// Viewer is nil when the record has no panorama; the page then shows
	// the unavailable message instead of starting the viewer.
	Viewer  *PanoViewer
	Gallery []string
	Others  []PanoChoice
}

// PanoChoice links to another monastery's 360° page.
type PanoChoice struct {
	ID      int
	Name    string
	URL     string
	HasPano bool
}

// resolvePanoRecord returns the record for rawID, or the first record when
// rawID is missing, malformed or unknown.
func resolvePanoRecord(ds *gazetteer.Dataset, rawID string) (gazetteer.Record, bool) {
	if id, err := strconv.Atoi(strings.TrimSpace(rawID)); err == nil {
		if r, ok := ds.ByID(id); ok {
			return r, true
		}
	}
	return ds.First()
}

func buildPanoView(ds *gazetteer.Dataset, rawID, lang string) PanoView {
	rec, ok := resolvePanoRecord(ds, rawID)
	if !ok {
		return PanoView{Lang: lang, NoData: true}
	}
	view := PanoView{
		Lang:    lang,
		ID:      rec.ID,
		Name:    rec.Name,
		Meta:    caption(rec),
		Gallery: append([]string(nil), rec.Images...),
	}
	if rec.HasPano() {
		view.Viewer = newPanoViewer(rec.Pano)
	}
	for _, r := range ds.Records() {
		if r.ID == rec.ID {
			continue
		}
		view.Others = append(view.Others, PanoChoice{ID: r.ID, Name: r.Name, URL: panoURL(r.ID), HasPano: r.HasPano()})
	}
	return view
}
