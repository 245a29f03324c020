package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/format"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
)

// DetailModal owns the "currently selected record" state of the detail
// dialog. Open replaces the selection wholesale; Close only hides it.
type DetailModal struct {
	ds            *gazetteer.Dataset
	directionsURL string

	selected *gazetteer.Record
	image    string
	visible  bool
}

func NewDetailModal(ds *gazetteer.Dataset, directionsURL string) *DetailModal {
	return &DetailModal{ds: ds, directionsURL: directionsURL}
}

// restoreDetailModal rebuilds the modal from state persisted in the session.
// A stale id (no longer in the dataset) restores as an empty, hidden modal.
func restoreDetailModal(ds *gazetteer.Dataset, directionsURL string, st mw.ModalState) *DetailModal {
	m := NewDetailModal(ds, directionsURL)
	if !st.Selected {
		return m
	}
	rec, ok := ds.ByID(st.ID)
	if !ok {
		return m
	}
	m.selected = &rec
	m.image = rec.Cover()
	if rec.HasImage(st.Image) {
		m.image = st.Image
	}
	m.visible = st.Visible
	return m
}

// Open selects the record with id and shows its cover image. Unknown ids
// leave the modal untouched and return false.
func (m *DetailModal) Open(id int) bool {
	rec, ok := m.ds.ByID(id)
	if !ok {
		return false
	}
	m.selected = &rec
	m.image = rec.Cover()
	m.visible = true
	return true
}

// ShowImage swaps the primary image to src when it belongs to the selected
// record. The selection is unchanged.
func (m *DetailModal) ShowImage(src string) bool {
	if m.selected == nil || !m.selected.HasImage(src) {
		return false
	}
	m.image = src
	return true
}

// Close hides the modal and keeps the selection.
func (m *DetailModal) Close() { m.visible = false }

func (m *DetailModal) Visible() bool { return m.visible }

// Selected returns the selected record id and false when nothing was opened
// yet.
func (m *DetailModal) Selected() (int, bool) {
	if m.selected == nil {
		return 0, false
	}
	return m.selected.ID, true
}

// State is the session representation of the modal.
func (m *DetailModal) State() mw.ModalState {
	id, ok := m.Selected()
	return mw.ModalState{ID: id, Selected: ok, Visible: m.visible, Image: m.image}
}

// ModalView is the render model of the dialog.
type ModalView struct {
	Lang          string
	CSRFToken     string
	ID            int
	Name          string
	Meta          string
	Notes         string
	Image         string
	Thumbs        []Thumb
	Coords        string
	DirectionsURL string
	PanoURL       string
	HasPano       bool
	Visible       bool
}

// Thumb is one entry of the thumbnail strip.
type Thumb struct {
	Src     string
	URL     string
	Current bool
}

// View renders the selection. It is the zero ModalView when nothing is selected.
func (m *DetailModal) View(lang string) ModalView {
	if m.selected == nil {
		return ModalView{Lang: lang}
	}
	r := m.selected
	v := ModalView{
		Lang:    lang,
		ID:      r.ID,
		Name:    r.Name,
		Meta:    metaLine(*r),
		Notes:   r.Notes,
		Image:   m.image,
		Coords:  format.FmtCoords(r.Lat, r.Lng),
		PanoURL: panoURL(r.ID),
		HasPano: r.HasPano(),
		Visible: m.visible,
	}
	if r.Mappable() {
		v.DirectionsURL = directionsURL(m.directionsURL, *r.Lat, *r.Lng)
	}
	v.Thumbs = make([]Thumb, 0, len(r.Images))
	for _, src := range r.Images {
		v.Thumbs = append(v.Thumbs, Thumb{
			Src:     src,
			URL:     modalURL(r.ID) + "/image?" + url.Values{"src": {src}}.Encode(),
			Current: src == m.image,
		})
	}
	return v
}

// metaLine renders "<district> • <tradition> • <access or N/A>".
func metaLine(r gazetteer.Record) string {
	return fmt.Sprintf("%s • %s • %s", r.District, r.Tradition, format.OrNA(r.Access))
}

// directionsURL renders "<provider>?q=<lat>,<lng>".
func directionsURL(base string, lat, lng float64) string {
	return base + "?q=" + strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
