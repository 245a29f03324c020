// Package secrets resolves secret:// references against Google Secret Manager,
// with a local key=value file for development and credential-less runs.
package secrets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Scheme prefixes every secret reference.
	Scheme = "secret://"
	// DefaultFallbackFile is read relative to the working directory.
	DefaultFallbackFile = ".secrets.local"
	latestVersion       = "latest"
)

var tracer = otel.Tracer("github.com/piyushjoshi9351/sikkim-final-rebuild/internal/secrets")

var newSecretManagerClient = func(ctx context.Context, opts ...option.ClientOption) (*secretmanager.Client, error) {
	return secretmanager.NewClient(ctx, opts...)
}

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// IsReference reports whether value names a secret rather than holding one.
func IsReference(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), Scheme)
}

// Resolver turns secret:// references into values. Results are cached for the
// life of the resolver.
type Resolver struct {
	client     secretManagerClient
	ownsClient bool
	logger     *zap.Logger
	project    string

	fallbackPath string
	fallbackOnce sync.Once
	fallback     map[string]string
	fallbackErr  error

	mu    sync.RWMutex
	cache map[string]string
}

type resolverConfig struct {
	logger       *zap.Logger
	project      string
	fallbackPath string
	client       secretManagerClient
	clientOpts   []option.ClientOption
}

// Option customises a Resolver.
type Option func(*resolverConfig)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *resolverConfig) { cfg.logger = logger }
}

// WithProject sets the Google Cloud project used when a reference names none.
func WithProject(projectID string) Option {
	return func(cfg *resolverConfig) { cfg.project = strings.TrimSpace(projectID) }
}

// WithFallbackFile overrides the local fallback file. Empty disables it.
func WithFallbackFile(path string) Option {
	return func(cfg *resolverConfig) { cfg.fallbackPath = strings.TrimSpace(path) }
}

// WithSecretManagerClient injects a client, mostly for tests.
func WithSecretManagerClient(client secretManagerClient) Option {
	return func(cfg *resolverConfig) { cfg.client = client }
}

// WithClientOptions forwards options to the Secret Manager client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *resolverConfig) { cfg.clientOpts = append(cfg.clientOpts, opts...) }
}

// NewResolver builds a resolver. A Secret Manager client is only dialled when
// a project is configured; without one, or without credentials, references
// resolve from the fallback file.
func NewResolver(ctx context.Context, opts ...Option) *Resolver {
	cfg := resolverConfig{fallbackPath: DefaultFallbackFile}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	r := &Resolver{
		client:       cfg.client,
		logger:       cfg.logger,
		project:      cfg.project,
		fallbackPath: cfg.fallbackPath,
		cache:        make(map[string]string),
	}
	if r.client == nil && r.project != "" {
		client, err := newSecretManagerClient(ctx, cfg.clientOpts...)
		if err != nil {
			r.logger.Warn("secret manager client unavailable; using fallback file", zap.Error(err))
		} else {
			r.client = client
			r.ownsClient = true
		}
	}
	return r
}

// Close releases the Secret Manager client if the resolver created it.
func (r *Resolver) Close() error {
	if r.ownsClient && r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Resolve returns the value behind ref, e.g.
// secret://session-signing-key?version=3&project=other.
func (r *Resolver) Resolve(ctx context.Context, ref string) (value string, err error) {
	parsed, err := parseReference(ref)
	if err != nil {
		return "", err
	}
	key := parsed.cacheKey()

	r.mu.RLock()
	value, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return value, nil
	}

	ctx, span := tracer.Start(ctx, "secrets.resolve")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("secrets.name", parsed.name))

	value, source, err := r.lookup(ctx, parsed)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("secrets.source", source))
	r.logger.Debug("secret resolved", zap.String("secret", parsed.name), zap.String("source", source))

	r.mu.Lock()
	r.cache[key] = value
	r.mu.Unlock()
	return value, nil
}

func (r *Resolver) lookup(ctx context.Context, ref reference) (string, string, error) {
	project := ref.project
	if project == "" {
		project = r.project
	}
	if project != "" && r.client != nil {
		name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, ref.name, ref.version)
		resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		switch {
		case err == nil && resp.GetPayload() == nil:
			return "", "", fmt.Errorf("secrets: empty payload for %s", name)
		case err == nil:
			return string(resp.GetPayload().GetData()), "secret-manager", nil
		case !isFallbackError(err):
			return "", "", fmt.Errorf("secrets: access %s: %w", name, err)
		}
		r.logger.Warn("secret manager unreachable; using fallback file", zap.String("secret", ref.name), zap.Error(err))
	}

	value, ok, err := r.lookupFallback(ref)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("secrets: %s not found in fallback file", ref.canonical)
	}
	return value, "fallback", nil
}

func (r *Resolver) lookupFallback(ref reference) (string, bool, error) {
	r.fallbackOnce.Do(r.loadFallback)
	if r.fallbackErr != nil {
		return "", false, r.fallbackErr
	}
	if value, ok := r.fallback[ref.cacheKey()]; ok {
		return value, true, nil
	}
	value, ok := r.fallback[ref.canonical]
	return value, ok, nil
}

// loadFallback reads "secret://name[?version=v]=value" lines. A missing file is
// treated as empty.
func (r *Resolver) loadFallback() {
	r.fallback = map[string]string{}
	if r.fallbackPath == "" {
		return
	}
	f, err := os.Open(r.fallbackPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.fallbackErr = fmt.Errorf("secrets: open fallback file: %w", err)
		}
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ref, value, ok := splitFallbackLine(line)
		if !ok {
			continue
		}
		parsed, err := parseReference(ref)
		if err != nil {
			continue
		}
		if parsed.explicitVersion {
			r.fallback[parsed.cacheKey()] = value
		} else {
			r.fallback[parsed.canonical] = value
		}
	}
	if err := scanner.Err(); err != nil {
		r.fallbackErr = fmt.Errorf("secrets: read fallback file: %w", err)
	}
}

// splitFallbackLine separates the reference from its value. The "=" inside
// each query pair belongs to the reference; values may contain "=" freely.
func splitFallbackLine(line string) (string, string, bool) {
	pos := 0
	if q := strings.Index(line, "?"); q >= 0 && q < strings.Index(line, "=") {
		pos = q + 1
		for {
			pairEq := strings.Index(line[pos:], "=")
			if pairEq < 0 {
				return "", "", false
			}
			pos += pairEq + 1
			amp := strings.Index(line[pos:], "&")
			eq := strings.Index(line[pos:], "=")
			if eq < 0 {
				return "", "", false
			}
			if amp < 0 || amp > eq {
				break
			}
			pos += amp + 1
		}
	}
	sep := strings.Index(line[pos:], "=")
	if sep < 0 {
		return "", "", false
	}
	sep += pos
	ref := strings.TrimSpace(line[:sep])
	if ref == "" {
		return "", "", false
	}
	return ref, strings.TrimSpace(line[sep+1:]), true
}

type reference struct {
	canonical       string
	name            string
	version         string
	explicitVersion bool
	project         string
}

func (r reference) cacheKey() string {
	return r.canonical + "#" + r.version
}

func parseReference(ref string) (reference, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return reference{}, errors.New("secrets: empty reference")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return reference{}, fmt.Errorf("secrets: invalid reference %q: %w", ref, err)
	}
	if u.Scheme != "secret" {
		return reference{}, fmt.Errorf("secrets: unsupported scheme %q", u.Scheme)
	}
	name := strings.Trim(u.Host+u.Path, "/")
	if name == "" {
		return reference{}, fmt.Errorf("secrets: missing secret name in %q", ref)
	}

	query := u.Query()
	out := reference{
		canonical: Scheme + name,
		name:      name,
		version:   strings.TrimSpace(query.Get("version")),
		project:   strings.TrimSpace(query.Get("project")),
	}
	out.explicitVersion = out.version != ""
	if !out.explicitVersion {
		out.version = latestVersion
	}
	return out, nil
}

// isFallbackError lists the failures that mean Secret Manager is unreachable
// rather than the secret being wrong.
func isFallbackError(err error) bool {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
