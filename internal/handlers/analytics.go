package handlers

import "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// Enabled reports whether the base layout should emit the gtag snippet.
func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }

// AnalyticsFromConfig maps the analytics section of the app config.
func AnalyticsFromConfig(cfg config.AnalyticsConfig) Analytics {
	return Analytics{
		GA4MeasurementID: cfg.GA4MeasurementID,
		Debug:            cfg.Debug,
	}
}
