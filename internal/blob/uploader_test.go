package blob

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.objects[r.URL.Path] = body
	f.types[r.URL.Path] = r.Header.Get("Content-Type")
	f.mu.Unlock()
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func TestUploader_PutFile(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	cfg := &S3Config{Region: "us-east-1", AccessKey: "key", SecretKey: "secret", Endpoint: srv.URL}
	require.NoError(t, cfg.Validate())

	up, err := NewUploaderWithConfig(context.Background(), cfg)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(src, []byte("png bytes"), 0o644))

	require.NoError(t, up.PutFile(context.Background(), "exports", "/faces_img/a.png", src))

	assert.Equal(t, []byte("png bytes"), fake.objects["/exports/faces_img/a.png"])
	assert.Equal(t, "image/png", fake.types["/exports/faces_img/a.png"])
}

func TestUploader_PutFileErrors(t *testing.T) {
	up := NewUploader(nil)

	err := up.PutFile(context.Background(), "b", "", "/nowhere")
	assert.ErrorContains(t, err, "empty object key")

	err = up.PutFile(context.Background(), "b", "k", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestS3Config_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     S3Config
		wantErr string
	}{
		{"disabled", S3Config{}, ""},
		{"aws", S3Config{Region: "eu-west-1", AccessKey: "a", SecretKey: "s"}, ""},
		{"minio", S3Config{Region: "us-east-1", AccessKey: "a", SecretKey: "s", Endpoint: "http://localhost:9000"}, ""},
		{"no region", S3Config{AccessKey: "a", SecretKey: "s"}, "region"},
		{"no secret", S3Config{Region: "r", AccessKey: "a"}, "secret_key"},
		{"no access key", S3Config{Region: "r", Endpoint: "http://localhost:9000"}, "access_key"},
		{"bad endpoint", S3Config{Region: "r", AccessKey: "a", SecretKey: "s", Endpoint: "localhost"}, "endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestS3Config_LogValueMasksSecrets(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))
	logger.Info("cfg", "s3", &S3Config{Region: "r", AccessKey: "AKIAEXAMPLEKEY", SecretKey: "supersecretvalue"})

	out := sb.String()
	assert.NotContains(t, out, "AKIAEXAMPLEKEY")
	assert.NotContains(t, out, "supersecretvalue")
	assert.Contains(t, out, "s3.region=r")
}
