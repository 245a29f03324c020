package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const signingKeyResource = "projects/gazetteer/secrets/session-signing-key/versions/latest"

func writeFallback(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".secrets.local")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestResolveCachesSecretManagerValue(t *testing.T) {
	ctx := context.Background()
	client := newFakeSecretClient()
	client.values[signingKeyResource] = "remote-key"

	r := NewResolver(ctx, WithSecretManagerClient(client), WithProject("gazetteer"), WithLogger(zaptest.NewLogger(t)))
	defer r.Close()

	for i := 0; i < 3; i++ {
		got, err := r.Resolve(ctx, "secret://session-signing-key")
		require.NoError(t, err)
		require.Equal(t, "remote-key", got)
	}
	require.Equal(t, 1, client.callCount(signingKeyResource))
}

func TestResolveHonoursVersionAndProject(t *testing.T) {
	ctx := context.Background()
	client := newFakeSecretClient()
	resource := "projects/other/secrets/session-signing-key/versions/3"
	client.values[resource] = "v3"

	r := NewResolver(ctx, WithSecretManagerClient(client), WithProject("gazetteer"))
	got, err := r.Resolve(ctx, "secret://session-signing-key?version=3&project=other")
	require.NoError(t, err)
	require.Equal(t, "v3", got)
	require.Equal(t, 1, client.callCount(resource))
	require.Zero(t, client.callCount(signingKeyResource))
}

func TestResolveFallsBackWhenSecretManagerUnreachable(t *testing.T) {
	ctx := context.Background()
	path := writeFallback(t, "# local keys\nsecret://session-signing-key=local-key\n")

	for _, code := range []codes.Code{codes.PermissionDenied, codes.Unauthenticated, codes.Unavailable, codes.DeadlineExceeded} {
		client := newFakeSecretClient()
		client.errors[signingKeyResource] = status.Error(code, "nope")

		r := NewResolver(ctx, WithSecretManagerClient(client), WithProject("gazetteer"), WithFallbackFile(path))
		got, err := r.Resolve(ctx, "secret://session-signing-key")
		require.NoError(t, err, code.String())
		require.Equal(t, "local-key", got)
	}
}

func TestResolveDoesNotFallBackOnNotFound(t *testing.T) {
	ctx := context.Background()
	path := writeFallback(t, "secret://session-signing-key=local-key\n")
	client := newFakeSecretClient()
	client.errors[signingKeyResource] = status.Error(codes.NotFound, "missing")

	r := NewResolver(ctx, WithSecretManagerClient(client), WithProject("gazetteer"), WithFallbackFile(path))
	_, err := r.Resolve(ctx, "secret://session-signing-key")
	require.Error(t, err)
	require.Equal(t, codes.NotFound, status.Code(errors.Unwrap(err)))
}

func TestResolveWithoutProjectReadsFallbackFile(t *testing.T) {
	ctx := context.Background()
	path := writeFallback(t, "secret://session-signing-key=unversioned\nsecret://session-signing-key?version=2=second\nnot a reference=x\n")

	// no project, so no client is dialled
	original := newSecretManagerClient
	newSecretManagerClient = func(context.Context, ...option.ClientOption) (*secretmanager.Client, error) {
		t.Fatal("secret manager client must not be created without a project")
		return nil, nil
	}
	t.Cleanup(func() { newSecretManagerClient = original })

	r := NewResolver(ctx, WithFallbackFile(path))
	got, err := r.Resolve(ctx, "secret://session-signing-key")
	require.NoError(t, err)
	require.Equal(t, "unversioned", got)

	got, err = r.Resolve(ctx, "secret://session-signing-key?version=2")
	require.NoError(t, err)
	require.Equal(t, "second", got)

	// unknown versions use the unversioned entry
	got, err = r.Resolve(ctx, "secret://session-signing-key?version=9")
	require.NoError(t, err)
	require.Equal(t, "unversioned", got)

	_, err = r.Resolve(ctx, "secret://other")
	require.ErrorContains(t, err, "not found in fallback file")
}

func TestSplitFallbackLine(t *testing.T) {
	cases := []struct {
		line, ref, value string
		ok               bool
	}{
		{"secret://k=c2lnbmluZw==", "secret://k", "c2lnbmluZw==", true},
		{"secret://k?version=2=a=b", "secret://k?version=2", "a=b", true},
		{"secret://k?version=2&project=p = v&w=x", "secret://k?version=2&project=p", "v&w=x", true},
		{"secret://k?version=2", "", "", false},
		{"no separator", "", "", false},
		{"=value", "", "", false},
	}
	for _, tc := range cases {
		ref, value, ok := splitFallbackLine(tc.line)
		require.Equal(t, tc.ok, ok, tc.line)
		require.Equal(t, tc.ref, ref, tc.line)
		require.Equal(t, tc.value, value, tc.line)
	}
}

func TestNewResolverWithoutCredentialsUsesFallback(t *testing.T) {
	ctx := context.Background()
	original := newSecretManagerClient
	newSecretManagerClient = func(context.Context, ...option.ClientOption) (*secretmanager.Client, error) {
		return nil, errors.New("no credentials")
	}
	t.Cleanup(func() { newSecretManagerClient = original })

	path := writeFallback(t, "secret://session-signing-key=bG9jYWwta2V5\n")
	r := NewResolver(ctx, WithProject("gazetteer"), WithFallbackFile(path))
	require.NoError(t, r.Close())

	got, err := r.Resolve(ctx, "secret://session-signing-key")
	require.NoError(t, err)
	require.Equal(t, "bG9jYWwta2V5", got)
}

func TestResolveRejectsInvalidReferences(t *testing.T) {
	r := NewResolver(context.Background(), WithFallbackFile(""))
	for _, ref := range []string{"", "plain-value", "https://example.com/key", "secret://", "secret:///"} {
		_, err := r.Resolve(context.Background(), ref)
		require.Error(t, err, ref)
	}
}

func TestIsReference(t *testing.T) {
	require.True(t, IsReference("secret://session-signing-key"))
	require.True(t, IsReference("  secret://k?version=1"))
	require.False(t, IsReference("hunter2"))
	require.False(t, IsReference(""))
}

type fakeSecretClient struct {
	mu      sync.Mutex
	values  map[string]string
	errors  map[string]error
	counter map[string]int
}

func newFakeSecretClient() *fakeSecretClient {
	return &fakeSecretClient{
		values:  make(map[string]string),
		errors:  make(map[string]error),
		counter: make(map[string]int),
	}
}

func (f *fakeSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := req.GetName()
	f.counter[name]++
	if err, ok := f.errors[name]; ok {
		return nil, err
	}
	if value, ok := f.values[name]; ok {
		return &secretmanagerpb.AccessSecretVersionResponse{
			Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
		}, nil
	}
	return nil, status.Error(codes.NotFound, "not found")
}

func (f *fakeSecretClient) Close() error { return nil }

func (f *fakeSecretClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counter[name]
}
