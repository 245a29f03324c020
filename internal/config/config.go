package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultEnvironment    = "local"
	defaultReadHeader     = 10 * time.Second
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultDataset        = "data/monasteries.json"
	defaultDatasetTimeout = 10 * time.Second
	defaultTemplatesDir   = "templates"
	defaultPublicDir      = "public"
	defaultLocalesDir     = "locales"
	defaultContentDir     = "content"
	defaultLang           = "en"
	defaultTileURL        = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	defaultMapCenter      = "27.33,88.45"
	defaultMapZoom        = 9
	defaultFocusZoom      = 12
	defaultDirectionsURL  = "https://www.google.com/maps"
	defaultFeaturedCount  = 8
	defaultLogLevel       = "info"
	defaultSecretsFile    = ".secrets.local"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Paths     PathsConfig
	I18n      I18nConfig
	Session   SessionConfig
	Map       MapConfig
	Analytics AnalyticsConfig
	Site      SiteConfig
	Cloud     CloudConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr              string
	Environment       string
	Dev               bool
	LogLevel          string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration
}

// DatasetConfig selects where the gazetteer dataset is fetched from.
type DatasetConfig struct {
	Location     string
	FetchTimeout time.Duration
}

// PathsConfig lists on-disk resources used for rendering.
type PathsConfig struct {
	Templates string
	Public    string
	Locales   string
	Content   string
}

// I18nConfig lists supported UI languages.
type I18nConfig struct {
	Default   string
	Supported []string
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// MapConfig configures the map view and directions links.
type MapConfig struct {
	TileURL       string
	CenterLat     float64
	CenterLng     float64
	Zoom          int
	FocusZoom     int
	DirectionsURL string
}

// AnalyticsConfig is surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string
	Debug            bool
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	BaseURL       string
	Name          string
	FeaturedCount int
}

// CloudConfig ties the server to a Google Cloud project for tracing and
// secret:// resolution.
type CloudConfig struct {
	ProjectID           string
	SecretsFallbackFile string
}

// Prod reports whether the server runs in the production environment.
func (c Config) Prod() bool {
	return c.Server.Environment == "prod"
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides
// and environment variables.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Port resolution: prefer GAZETTEER_PORT, then the platform's PORT.
	port := stringWithDefault(lookup, "GAZETTEER_PORT", stringWithDefault(lookup, "PORT", defaultPort))

	cfg := Config{
		Server: ServerConfig{
			Addr:              ":" + strings.TrimPrefix(port, ":"),
			Environment:       strings.ToLower(stringWithDefault(lookup, "GAZETTEER_ENV", defaultEnvironment)),
			Dev:               boolWithDefault(lookup, "GAZETTEER_DEV", false),
			LogLevel:          strings.ToLower(stringWithDefault(lookup, "GAZETTEER_LOG_LEVEL", defaultLogLevel)),
			ReadHeaderTimeout: defaultReadHeader,
			ReadTimeout:       durationWithDefault(lookup, "GAZETTEER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:      durationWithDefault(lookup, "GAZETTEER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:       durationWithDefault(lookup, "GAZETTEER_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout:    durationWithDefault(lookup, "GAZETTEER_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Dataset: DatasetConfig{
			Location:     stringWithDefault(lookup, "GAZETTEER_DATASET", defaultDataset),
			FetchTimeout: durationWithDefault(lookup, "GAZETTEER_DATASET_TIMEOUT", defaultDatasetTimeout),
		},
		Paths: PathsConfig{
			Templates: stringWithDefault(lookup, "GAZETTEER_TEMPLATES_DIR", defaultTemplatesDir),
			Public:    stringWithDefault(lookup, "GAZETTEER_PUBLIC_DIR", defaultPublicDir),
			Locales:   stringWithDefault(lookup, "GAZETTEER_LOCALES_DIR", defaultLocalesDir),
			Content:   stringWithDefault(lookup, "GAZETTEER_CONTENT_DIR", defaultContentDir),
		},
		I18n: I18nConfig{
			Default:   strings.ToLower(stringWithDefault(lookup, "GAZETTEER_DEFAULT_LANG", defaultLang)),
			Supported: csvWithDefault(lookup, "GAZETTEER_LANGS"),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "GAZETTEER_SESSION_SIGNING_KEY", ""),
		},
		Map: MapConfig{
			TileURL:       stringWithDefault(lookup, "GAZETTEER_MAP_TILE_URL", defaultTileURL),
			Zoom:          intWithDefault(lookup, "GAZETTEER_MAP_ZOOM", defaultMapZoom),
			FocusZoom:     intWithDefault(lookup, "GAZETTEER_MAP_FOCUS_ZOOM", defaultFocusZoom),
			DirectionsURL: stringWithDefault(lookup, "GAZETTEER_DIRECTIONS_URL", defaultDirectionsURL),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "GAZETTEER_GA_MEASUREMENT_ID", ""),
			Debug:            boolWithDefault(lookup, "GAZETTEER_ANALYTICS_DEBUG", false),
		},
		Site: SiteConfig{
			BaseURL:       strings.TrimRight(stringWithDefault(lookup, "GAZETTEER_BASE_URL", ""), "/"),
			Name:          stringWithDefault(lookup, "GAZETTEER_SITE_NAME", "Monasteries of Sikkim"),
			FeaturedCount: intWithDefault(lookup, "GAZETTEER_FEATURED_COUNT", defaultFeaturedCount),
		},
		Cloud: CloudConfig{
			ProjectID:           stringWithDefault(lookup, "GAZETTEER_GCP_PROJECT", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
			SecretsFallbackFile: stringWithDefault(lookup, "GAZETTEER_SECRETS_FALLBACK_FILE", defaultSecretsFile),
		},
	}

	// DEV is honoured as a fallback for GAZETTEER_DEV.
	if !cfg.Server.Dev {
		cfg.Server.Dev = boolWithDefault(lookup, "DEV", false)
	}
	cfg.Session.Secure = cfg.Prod()

	if len(cfg.I18n.Supported) == 0 {
		cfg.I18n.Supported = []string{"en", "ne"}
	}

	var invalid []string
	center := stringWithDefault(lookup, "GAZETTEER_MAP_CENTER", defaultMapCenter)
	lat, lng, err := parseLatLng(center)
	if err != nil {
		invalid = append(invalid, "Map.Center")
	}
	cfg.Map.CenterLat, cfg.Map.CenterLng = lat, lng

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if strings.TrimPrefix(cfg.Server.Addr, ":") == "" {
		missing = append(missing, "Server.Addr")
	}
	if strings.TrimSpace(cfg.Dataset.Location) == "" {
		missing = append(missing, "Dataset.Location")
	}
	if cfg.Dataset.FetchTimeout <= 0 {
		missing = append(missing, "Dataset.FetchTimeout")
	}
	if !contains(cfg.I18n.Supported, cfg.I18n.Default) {
		missing = append(missing, "I18n.Default")
	}
	if cfg.Map.Zoom <= 0 || cfg.Map.FocusZoom <= 0 {
		missing = append(missing, "Map.Zoom")
	}
	if cfg.Site.FeaturedCount < 0 {
		missing = append(missing, "Site.FeaturedCount")
	}
	// Production must sign sessions with a stable key.
	if cfg.Prod() && strings.TrimSpace(cfg.Session.SigningKey) == "" {
		missing = append(missing, "Session.SigningKey")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func parseLatLng(raw string) (float64, float64, error) {
	latRaw, lngRaw, ok := strings.Cut(raw, ",")
	if !ok {
		return 0, 0, errors.New("config: expected lat,lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("config: invalid latitude %q", latRaw)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("config: invalid longitude %q", lngRaw)
	}
	return lat, lng, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
