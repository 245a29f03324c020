package gazetteer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// EmbeddedLocation selects the sample dataset compiled into the binary.
const EmbeddedLocation = "embedded"

const defaultHTTPTimeout = 10 * time.Second

// Source opens the raw dataset document.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the dataset from a local path.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.Path)
}

// HTTPSource fetches the dataset over HTTP, always revalidating with the origin.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Name() string { return s.URL }

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("gazetteer: dataset remote status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// GCSSource reads the dataset object from a Cloud Storage bucket.
type GCSSource struct {
	Bucket string
	Object string
}

func (s GCSSource) Name() string { return "gs://" + s.Bucket + "/" + s.Object }

func (s GCSSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: storage client: %w", err)
	}
	r, err := client.Bucket(s.Bucket).Object(s.Object).NewReader(ctx)
	if err != nil {
		client.Close()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gazetteer: %s: %w", s.Name(), ErrNotFound)
		}
		return nil, err
	}
	return &gcsReadCloser{Reader: r, client: client}, nil
}

type gcsReadCloser struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReadCloser) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// BytesSource serves a fixed document, used for the embedded sample and tests.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string {
	if s.Label == "" {
		return "bytes"
	}
	return s.Label
}

func (s BytesSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// ParseLocation maps a configured dataset location to a Source. Supported forms
// are a local path, an http(s) URL, gs://bucket/object and "embedded".
func ParseLocation(location string, embedded []byte) (Source, error) {
	loc := strings.TrimSpace(location)
	switch {
	case loc == "":
		return nil, errors.New("gazetteer: dataset location is empty")
	case loc == EmbeddedLocation:
		return BytesSource{Label: EmbeddedLocation, Data: embedded}, nil
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return HTTPSource{URL: loc}, nil
	case strings.HasPrefix(loc, "gs://"):
		rest := strings.TrimPrefix(loc, "gs://")
		bucket, object, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || object == "" {
			return nil, fmt.Errorf("gazetteer: invalid gs location %q", loc)
		}
		return GCSSource{Bucket: bucket, Object: object}, nil
	default:
		return FileSource{Path: strings.TrimPrefix(loc, "file://")}, nil
	}
}
