package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lexflow/backend/internal/domain/intake"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/lexflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{AccessKey: "k", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket:            "lexflow-documents",
			AccessKey:         "test-key",
			SecretKey:         "test-secret",
			Endpoint:          "localhost:9000",
			UsePathStyle:      true,
			PresignExpiration: 15 * time.Minute,
		})
		require.NoError(t, err)
		assert.Equal(t, "lexflow-documents", storage.GetBucket())
		assert.Equal(t, 15*time.Minute, storage.presignTTL)
	})

	t.Run("presign expiration defaults to one hour", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"})
		require.NoError(t, err)
		assert.Equal(t, time.Hour, storage.presignTTL)
	})

	t.Run("option overrides expiration", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(
			&config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"},
			WithPresignExpiration(5*time.Minute),
			WithLogger(zaptest.NewLogger(t)),
		)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, storage.presignTTL)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"", false, ""},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.example.com", false, "https://s3.example.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.endpoint, tt.ssl)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

// fakeS3 is a path-style S3 endpoint backed by a map
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/docs/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func newFakeStorage(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	storage, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "docs",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     server.URL,
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return storage, fake
}

func TestS3ObjectStorage_DownloadAndDelete(t *testing.T) {
	storage, fake := newFakeStorage(t)
	ctx := context.Background()
	fake.objects["submissions/1/retainer.pdf"] = []byte("%PDF-1.4 retainer")

	data, err := storage.Download(ctx, "submissions/1/retainer.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 retainer", string(data))

	require.NoError(t, storage.DeleteObject(ctx, "submissions/1/retainer.pdf"))
	assert.False(t, fake.has("submissions/1/retainer.pdf"))
}

func TestS3ObjectStorage_DownloadMissingKey(t *testing.T) {
	storage, _ := newFakeStorage(t)

	_, err := storage.Download(context.Background(), "submissions/1/missing.pdf")
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))
}

func TestS3ObjectStorage_Upload(t *testing.T) {
	storage, fake := newFakeStorage(t)

	err := storage.Upload(context.Background(), "submissions/2/id.pdf", []byte("content"), "application/pdf")
	require.NoError(t, err)
	assert.True(t, fake.has("submissions/2/id.pdf"))
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	storage, _ := newFakeStorage(t)
	ctx := context.Background()

	assert.Error(t, storage.Upload(ctx, "", nil, "text/plain"))
	_, err := storage.Download(ctx, "")
	assert.Error(t, err)
	assert.Error(t, storage.DeleteObject(ctx, ""))
	_, _, err = storage.GenerateDownloadURL(ctx, "", time.Minute)
	assert.Error(t, err)
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	storage, _ := newFakeStorage(t)

	before := time.Now()
	url, expiresAt, err := storage.GenerateDownloadURL(context.Background(), "submissions/3/doc.pdf", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "/docs/submissions/3/doc.pdf")
	assert.Contains(t, url, "X-Amz-Expires=3600")
	assert.WithinDuration(t, before.Add(time.Hour), expiresAt, 5*time.Second)
}

func TestDisabledObjectStorage(t *testing.T) {
	storage := NewDisabledObjectStorage()
	ctx := context.Background()

	err := storage.Upload(ctx, "k", []byte("x"), "text/plain")
	require.Error(t, err)
	var gwErr *intake.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "storage not configured", gwErr.Reason)
	assert.True(t, shared.HasCode(err, shared.CodeGatewayError))

	_, err = storage.Download(ctx, "k")
	assert.Error(t, err)
	_, _, err = storage.GenerateDownloadURL(ctx, "k", time.Minute)
	assert.Error(t, err)
	assert.Error(t, storage.DeleteObject(ctx, "k"))
	assert.Empty(t, storage.GetBucket())
}
