package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/config"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/filter"
	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"
	mw "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/middleware"
)

func ptr(f float64) *float64 { return &f }

func twoRecords(t *testing.T) *gazetteer.Dataset {
	t.Helper()
	ds, err := gazetteer.NewDataset([]gazetteer.Record{
		{ID: 1, Name: "Rumtek", District: "Gangtok", Tradition: "Kagyu", Notes: "Golden stupa",
			Lat: ptr(27.2886), Lng: ptr(88.5614), Images: []string{"/a.jpg", "/b.jpg"}, Pano: "/p.jpg"},
		{ID: 2, Name: "Pemayangtse", District: "Gyalshing", Tradition: "Nyingma", Notes: "Wooden palace",
			Images: []string{"/c.jpg"}},
	})
	require.NoError(t, err)
	return ds
}

func TestBuildExploreView(t *testing.T) {
	ds := twoRecords(t)

	view := buildExploreView(ds, filter.Criteria{}, "en")
	require.Equal(t, 2, view.Total)
	require.Len(t, view.Cards, 2)
	require.False(t, view.Empty)
	require.Equal(t, "/explore", view.PushURL)
	require.Equal(t, "Gangtok • Kagyu", view.Cards[0].Caption)
	require.Equal(t, "/a.jpg", view.Cards[0].Cover)

	view = buildExploreView(ds, filter.Criteria{Query: "stupa"}, "en")
	require.Len(t, view.Cards, 1)
	require.Equal(t, 1, view.Cards[0].ID)
	// matched on notes, so the name carries no highlight
	require.Equal(t, []filter.Segment{{Text: "Rumtek"}}, view.Cards[0].NameSegments)

	view = buildExploreView(ds, filter.Criteria{District: "Gyalshing"}, "en")
	require.Len(t, view.Cards, 1)
	require.Equal(t, 2, view.Cards[0].ID)
	require.Equal(t, []FacetOption{{Value: "Gangtok"}, {Value: "Gyalshing", Selected: true}}, view.Districts)

	view = buildExploreView(ds, filter.Criteria{District: "Gangtok", Tradition: "Nyingma"}, "en")
	require.True(t, view.Empty)
	require.Empty(t, view.Cards)
	require.Equal(t, "/explore?district=Gangtok&tradition=Nyingma", view.PushURL)
}

func TestDetailModalLifecycle(t *testing.T) {
	m := NewDetailModal(twoRecords(t), "https://maps.example")
	require.False(t, m.Visible())
	require.Equal(t, ModalView{Lang: "en"}, m.View("en"))

	require.False(t, m.Open(99))
	_, selected := m.Selected()
	require.False(t, selected)

	require.True(t, m.Open(1))
	v := m.View("en")
	require.True(t, v.Visible)
	require.Equal(t, "/a.jpg", v.Image)
	require.Equal(t, "Gangtok • Kagyu • N/A", v.Meta)
	require.Equal(t, "https://maps.example?q=27.2886,88.5614", v.DirectionsURL)
	require.Equal(t, "27.2886° N, 88.5614° E", v.Coords)
	require.True(t, v.HasPano)
	require.Len(t, v.Thumbs, 2)
	require.True(t, v.Thumbs[0].Current)
	require.Equal(t, "/monasteries/1/modal/image?src=%2Fb.jpg", v.Thumbs[1].URL)

	require.False(t, m.ShowImage("/c.jpg"))
	require.True(t, m.ShowImage("/b.jpg"))
	require.Equal(t, "/b.jpg", m.View("en").Image)

	m.Close()
	require.False(t, m.Visible())
	id, _ := m.Selected()
	require.Equal(t, 1, id)
	require.Equal(t, mw.ModalState{ID: 1, Selected: true, Visible: false, Image: "/b.jpg"}, m.State())

	// reopening resets to the cover image
	require.True(t, m.Open(2))
	v = m.View("en")
	require.Equal(t, "/c.jpg", v.Image)
	require.Empty(t, v.DirectionsURL)
	require.Empty(t, v.Coords)
	require.False(t, v.HasPano)
}

func TestRestoreDetailModalIgnoresStaleState(t *testing.T) {
	ds := twoRecords(t)

	m := restoreDetailModal(ds, "https://maps.example", mw.ModalState{ID: 1, Selected: true, Visible: true, Image: "/b.jpg"})
	id, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, 1, id)
	require.True(t, m.Visible())
	require.Equal(t, "/b.jpg", m.View("en").Image)

	m = restoreDetailModal(ds, "https://maps.example", mw.ModalState{ID: 1, Selected: true, Visible: true, Image: "/c.jpg"})
	require.Equal(t, "/a.jpg", m.View("en").Image)

	m = restoreDetailModal(ds, "https://maps.example", mw.ModalState{ID: 42, Selected: true, Visible: true})
	_, ok = m.Selected()
	require.False(t, ok)
	require.False(t, m.Visible())

	// without the selected flag the id is not trusted
	m = restoreDetailModal(ds, "https://maps.example", mw.ModalState{ID: 1, Visible: true})
	_, ok = m.Selected()
	require.False(t, ok)
}

func TestDetailModalSelectsRecordZero(t *testing.T) {
	ds, err := gazetteer.NewDataset([]gazetteer.Record{
		{ID: 0, Name: "Lingdum", District: "Gangtok", Tradition: "Kagyu", Images: []string{"/a.jpg", "/b.jpg"}},
	})
	require.NoError(t, err)

	m := NewDetailModal(ds, "https://maps.example")
	require.True(t, m.Open(0))
	st := m.State()
	require.Equal(t, mw.ModalState{ID: 0, Selected: true, Visible: true, Image: "/a.jpg"}, st)

	m = restoreDetailModal(ds, "https://maps.example", st)
	id, ok := m.Selected()
	require.True(t, ok)
	require.Zero(t, id)
	require.True(t, m.ShowImage("/b.jpg"))
	require.Equal(t, "/b.jpg", m.View("en").Image)
}

func TestBuildMapView(t *testing.T) {
	ds := twoRecords(t)
	cfg := config.MapConfig{TileURL: "https://tiles/{z}/{x}/{y}.png", CenterLat: 27.5, CenterLng: 88.5, Zoom: 9, FocusZoom: 12}

	view := buildMapView(ds, nil, cfg, "en")
	require.Len(t, view.Client.Markers, 1)
	require.Equal(t, 1, view.Client.Markers[0].ID)
	require.Nil(t, view.Client.Focus)
	require.Equal(t, [2]float64{27.5, 88.5}, view.Client.Center)
	require.Equal(t, []UnmappedRecord{{ID: 2, Name: "Pemayangtse", ModalURL: "/monasteries/2/modal"}}, view.Unmapped)

	one := 1
	view = buildMapView(ds, &one, cfg, "en")
	require.Equal(t, &MapFocus{ID: 1, Lat: 27.2886, Lng: 88.5614, Zoom: 12, ModalURL: "/monasteries/1/modal"}, view.Client.Focus)

	two := 2
	view = buildMapView(ds, &two, cfg, "en")
	require.Nil(t, view.Client.Focus)
}

func TestBuildPanoView(t *testing.T) {
	ds := twoRecords(t)

	view := buildPanoView(ds, "1", "en")
	require.Equal(t, "Rumtek", view.Name)
	require.NotNil(t, view.Viewer)
	require.Equal(t, "/p.jpg", view.Viewer.Panorama)
	require.Equal(t, []string{"/a.jpg", "/b.jpg"}, view.Gallery)
	require.Equal(t, []PanoChoice{{ID: 2, Name: "Pemayangtse", URL: "/view360?id=2"}}, view.Others)

	view = buildPanoView(ds, "2", "en")
	require.Nil(t, view.Viewer)
	require.Equal(t, "Gyalshing • Nyingma", view.Meta)

	for _, raw := range []string{"", "abc", "99"} {
		require.Equal(t, 1, buildPanoView(ds, raw, "en").ID, raw)
	}

	empty, err := gazetteer.NewDataset(nil)
	require.NoError(t, err)
	require.Equal(t, PanoView{Lang: "en", NoData: true}, buildPanoView(empty, "1", "en"))
}

func TestBuildHomeView(t *testing.T) {
	view := buildHomeView(twoRecords(t), 8, "en")
	require.Len(t, view.Featured, 2)
	require.Equal(t, 2, view.Total)
	require.Equal(t, 1, view.Mapped)
	require.Equal(t, 1, view.WithPano)
}
