package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piyushjoshi9351/sikkim-final-rebuild/internal/config"
)

func TestNewPageFillsLayout(t *testing.T) {
	site := Site{
		Name:      "Monasteries of Sikkim",
		BaseURL:   "https://example.org",
		Langs:     []string{"en", "ne"},
		Analytics: AnalyticsFromConfig(config.AnalyticsConfig{GA4MeasurementID: "G-TEST"}),
	}
	vm := NewPage(site, "ne", "/map", "Map", "Monastery locations", "tok")

	require.Equal(t, "Map", vm.Title)
	require.Equal(t, "ne", vm.Lang)
	require.Equal(t, "tok", vm.CSRFToken)
	require.Equal(t, "https://example.org/map", vm.SEO.Canonical)
	require.Len(t, vm.SEO.Alternates, 2)
	require.True(t, vm.Analytics.Enabled())
	require.True(t, vm.Nav[1].Active)
	require.Len(t, vm.Breadcrumbs, 2)
}

func TestNewPageDefaultsTitleToSiteName(t *testing.T) {
	vm := NewPage(Site{Name: "Monasteries of Sikkim"}, "en", "/", "", "", "")
	require.Equal(t, "Monasteries of Sikkim", vm.Title)
	require.Equal(t, "Monasteries of Sikkim", vm.SEO.Title)
	require.Empty(t, vm.SEO.Alternates)
	require.False(t, vm.Analytics.Enabled())
}
