package gazetteer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const sampleDoc = `[
	{"id": 1, "name": "Rumtek", "district": "East", "tradition": "Kagyu", "notes": "famous", "images": ["a.jpg"]},
	{"id": 2, "name": "Pemayangtse", "district": "West", "tradition": "Nyingma", "notes": "old", "images": ["b.jpg"]}
]`

type flakySource struct {
	opens atomic.Int32
	fail  atomic.Bool
}

func (s *flakySource) Name() string { return "flaky" }

func (s *flakySource) Open(ctx context.Context) (io.ReadCloser, error) {
	s.opens.Add(1)
	if s.fail.Load() {
		return nil, errors.New("boom")
	}
	return io.NopCloser(strings.NewReader(sampleDoc)), nil
}

func TestLoaderFetchesOnce(t *testing.T) {
	t.Parallel()

	src := &flakySource{}
	loader := NewLoader(src)
	require.False(t, loader.Loaded())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := loader.Load(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 2, ds.Len())
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), src.opens.Load())
	require.EqualValues(t, 1, loader.Fetches())
	require.True(t, loader.Loaded())
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	src := &flakySource{}
	src.fail.Store(true)

	var observed []error
	loader := NewLoader(src, WithObserver(func(source string, _ time.Duration, _ int, err error) {
		require.Equal(t, "flaky", source)
		observed = append(observed, err)
	}))

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "load dataset from flaky")
	require.False(t, loader.Loaded())

	src.fail.Store(false)
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, int32(2), src.opens.Load())
	require.Len(t, observed, 2)
	require.Error(t, observed[0])
	require.NoError(t, observed[1])
}

func TestLoaderTracesEachFetch(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	src := &flakySource{}
	src.fail.Store(true)
	loader := NewLoader(src, WithTracerProvider(tp))

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	src.fail.Store(false)
	_, err = loader.Load(context.Background())
	require.NoError(t, err)
	// memoized loads do not fetch again
	_, err = loader.Load(context.Background())
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	failed := spans[0]
	require.Equal(t, "gazetteer.fetch", failed.Name())
	require.Equal(t, codes.Error, failed.Status().Code)
	require.Equal(t, "boom", failed.Status().Description)
	require.Len(t, failed.Events(), 1)
	require.Equal(t, "exception", failed.Events()[0].Name)
	require.Contains(t, failed.Attributes(), attribute.String("gazetteer.source", "flaky"))

	ok := spans[1]
	require.Equal(t, codes.Unset, ok.Status().Code)
	require.Contains(t, ok.Attributes(), attribute.String("gazetteer.source", "flaky"))
	require.Contains(t, ok.Attributes(), attribute.Int("gazetteer.records", 2))
}

func TestStaticLoaderNeverFetches(t *testing.T) {
	t.Parallel()

	ds, err := NewDataset([]Record{{ID: 7, Name: "Seven", Images: []string{"7.jpg"}}})
	require.NoError(t, err)

	loader := StaticLoader(ds)
	got, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Same(t, ds, got)
	require.Zero(t, loader.Fetches())
}

func TestHTTPSourceBypassesCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleDoc)
	}))
	t.Cleanup(srv.Close)

	loader := NewLoader(HTTPSource{URL: srv.URL + "/data/monasteries.json"}, WithTimeout(time.Second))
	for i := 0; i < 3; i++ {
		ds, err := loader.Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, ds.Len())
	}
	require.Equal(t, int32(1), hits.Load())
}

func TestHTTPSourceRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewLoader(HTTPSource{URL: srv.URL}).Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestParseLocation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Source
	}{
		{"data/monasteries.json", FileSource{Path: "data/monasteries.json"}},
		{"file:///srv/monasteries.json", FileSource{Path: "/srv/monasteries.json"}},
		{"https://example.org/monasteries.json", HTTPSource{URL: "https://example.org/monasteries.json"}},
		{"gs://gazetteer-data/v1/monasteries.json", GCSSource{Bucket: "gazetteer-data", Object: "v1/monasteries.json"}},
	}
	for _, tc := range cases {
		got, err := ParseLocation(tc.in, nil)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	src, err := ParseLocation(EmbeddedLocation, []byte(sampleDoc))
	require.NoError(t, err)
	require.Equal(t, EmbeddedLocation, src.Name())

	_, err = ParseLocation("gs://bucket-only", nil)
	require.Error(t, err)
	_, err = ParseLocation("  ", nil)
	require.Error(t, err)
}

func TestFileSourceMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(FileSource{Path: t.TempDir() + "/missing.json"}).Load(context.Background())
	require.Error(t, err)
}
