package gazetteer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/gazetteer"

// ErrNotFound reports a missing record or dataset object.
var ErrNotFound = errors.New("gazetteer: not found")

// LoadObserver is notified after every fetch attempt.
type LoadObserver func(source string, elapsed time.Duration, records int, err error)

// Loader fetches the dataset on first demand and memoizes it for the process
// lifetime. Failed fetches are not cached.
type Loader struct {
	source   Source
	timeout  time.Duration
	observer LoadObserver
	tracer   trace.Tracer

	mu      sync.Mutex
	dataset atomic.Pointer[Dataset]
	fetches atomic.Int64
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithTimeout bounds a single fetch. Zero disables the extra deadline.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.timeout = d }
}

// WithObserver registers a callback for fetch outcomes.
func WithObserver(fn LoadObserver) LoaderOption {
	return func(l *Loader) { l.observer = fn }
}

// WithTracerProvider overrides the global tracer provider for fetch spans.
func WithTracerProvider(tp trace.TracerProvider) LoaderOption {
	return func(l *Loader) {
		if tp != nil {
			l.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewLoader builds a loader for the given source.
func NewLoader(source Source, opts ...LoaderOption) *Loader {
	l := &Loader{source: source, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// StaticLoader returns a loader that is already populated with ds.
func StaticLoader(ds *Dataset) *Loader {
	l := &Loader{source: BytesSource{Label: "static"}, tracer: otel.Tracer(tracerName)}
	l.dataset.Store(ds)
	return l
}

// Load returns the memoized dataset, fetching it on the first call.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if ds := l.dataset.Load(); ds != nil {
		return ds, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if ds := l.dataset.Load(); ds != nil {
		return ds, nil
	}
	if l.source == nil {
		return nil, errors.New("gazetteer: loader has no source")
	}

	start := time.Now()
	ds, err := l.fetch(ctx)
	if l.observer != nil {
		l.observer(l.source.Name(), time.Since(start), ds.Len(), err)
	}
	if err != nil {
		return nil, fmt.Errorf("gazetteer: load dataset from %s: %w", l.source.Name(), err)
	}
	l.dataset.Store(ds)
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context) (ds *Dataset, err error) {
	ctx, span := l.tracer.Start(ctx, "gazetteer.fetch",
		trace.WithAttributes(attribute.String("gazetteer.source", l.source.Name())))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("gazetteer.records", ds.Len()))
		}
		span.End()
	}()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	l.fetches.Add(1)
	rc, err := l.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Decode(rc)
}

// Loaded reports whether the dataset has been fetched successfully.
func (l *Loader) Loaded() bool {
	return l.dataset.Load() != nil
}

// Fetches returns how many fetch attempts the loader has made.
func (l *Loader) Fetches() int64 {
	return l.fetches.Load()
}

// SourceName identifies the configured source.
func (l *Loader) SourceName() string {
	if l.source == nil {
		return ""
	}
	return l.source.Name()
}
