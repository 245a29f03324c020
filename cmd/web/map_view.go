package main

import (
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/config"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
)

// MapMarker is one geolocated record as consumed by the map script.
type MapMarker struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	ModalURL string  `json:"modalUrl"`
}

// MapFocus asks the page to centre on a marker, open its popup and the modal.
type MapFocus struct {
	ID       int     `json:"id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Zoom     int     `json:"zoom"`
	ModalURL string  `json:"modalUrl"`
}

// MapClient is serialised into the page for the map script.
type MapClient struct {
	TileURL string      `json:"tileUrl"`
	Center  [2]float64  `json:"center"`
	Zoom    int         `json:"zoom"`
	Markers []MapMarker `json:"markers"`
	Focus   *MapFocus   `json:"focus,omitempty"`
}

// MapView is the render model of the map page.
type MapView struct {
	Lang   string
	Client MapClient
	// Unmapped lists records without coordinates; they stay reachable
	// through the modal.
	Unmapped []UnmappedRecord
}

type UnmappedRecord struct {
	ID       int
	Name     string
	ModalURL string
}

// buildMapView places a marker for every record with both coordinates. focusID
// is the already-consumed focus flag; it only yields a focus when a marker
// exists for it.
func buildMapView(ds *gazetteer.Dataset, focusID *int, cfg config.MapConfig, lang string) MapView {
	view := MapView{
		Lang: lang,
		Client: MapClient{
			TileURL: cfg.TileURL,
			Center:  [2]float64{cfg.CenterLat, cfg.CenterLng},
			Zoom:    cfg.Zoom,
			Markers: []MapMarker{},
		},
	}
	for _, r := range ds.Records() {
		if !r.Mappable() {
			view.Unmapped = append(view.Unmapped, UnmappedRecord{ID: r.ID, Name: r.Name, ModalURL: modalURL(r.ID)})
			continue
		}
		view.Client.Markers = append(view.Client.Markers, MapMarker{
			ID:       r.ID,
			Name:     r.Name,
			District: r.District,
			Lat:      *r.Lat,
			Lng:      *r.Lng,
			ModalURL: modalURL(r.ID),
		})
	}
	if focusID != nil {
		for _, m := range view.Client.Markers {
			if m.ID == *focusID {
				view.Client.Focus = &MapFocus{ID: m.ID, Lat: m.Lat, Lng: m.Lng, Zoom: cfg.FocusZoom, ModalURL: m.ModalURL}
				break
			}
		}
	}
	return view
}
