package dsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openmined/dsmanager/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, token string) (*Client, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &server.Config{
		HTTP: server.HTTPConfig{Addr: "127.0.0.1:0", APIToken: token},
		Datasets: server.DatasetsConfig{
			Root:        root,
			LockEnabled: true,
			LockTimeout: time.Second,
		},
	}
	require.NoError(t, cfg.Validate())

	svc, err := server.NewServices(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Shutdown(context.Background()) })

	h, err := server.SetupRoutes(&cfg.HTTP, svc)
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, WithToken(token), WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c, root
}

func seed(t *testing.T, root, name string, files ...string) {
	t.Helper()
	for _, folder := range []string{"img", "Control1", "Control2"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name, folder), 0o755))
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name, "img", f), []byte("img-"+f), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, name, "Control1", f), []byte("c1-"+f), 0o644))
	}
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrNoServerURL)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, root := newTestServer(t, "")
	seed(t, root, "alpha", "a.png", "b.png")

	require.NoError(t, c.Health(ctx))

	ds, err := c.CreateDataset(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", ds.Path)

	folders, err := c.Folders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)

	images, err := c.Images(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, images)

	data, err := c.Image(ctx, "alpha", "Control1", "a.png")
	require.NoError(t, err)
	assert.Equal(t, "c1-a.png", string(data))

	require.NoError(t, c.SetCaption(ctx, "alpha", "a.png", "a red bike"))
	caption, err := c.Caption(ctx, "alpha", "a.png")
	require.NoError(t, err)
	assert.Equal(t, "a red bike", caption)

	cmp, err := c.Compare(ctx, "alpha", "beta")
	require.NoError(t, err)
	assert.Empty(t, cmp.Orphans)
	assert.Equal(t, []string{"a.png", "b.png"}, cmp.Missing)

	tr, err := c.Transfer(ctx, "alpha", "a.png", "beta", "")
	require.NoError(t, err)
	assert.True(t, tr.Success)
	require.NotNil(t, tr.Primary)
	assert.Len(t, tr.Primary.Moved, 3) // img, Control1, caption

	rs, err := c.Reshuffle(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Count)
	assert.Equal(t, 2, rs.FilesRenamed)

	require.NoError(t, c.SaveImage(ctx, "beta", tr.Primary.NewFilename, strings.NewReader("edited")))
	data, err = c.Image(ctx, "beta", "img", tr.Primary.NewFilename)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data))

	del, err := c.Delete(ctx, "beta", tr.Primary.NewFilename, "")
	require.NoError(t, err)
	assert.True(t, del.Success)
	assert.Len(t, del.Deleted, 3)

	dest := t.TempDir()
	exp, err := c.Export(ctx, "alpha", dest)
	require.NoError(t, err)
	assert.Contains(t, exp.Exported, "alpha_img")
}

func TestAPIErrors(t *testing.T) {
	ctx := context.Background()
	c, root := newTestServer(t, "")
	seed(t, root, "alpha", "a.png")

	_, err := c.Images(ctx, "ghost")
	require.Error(t, err)
	assert.True(t, IsCode(err, "E_DATASET_NOT_FOUND"))

	_, err = c.Delete(ctx, "alpha", "zzz.png", "")
	require.Error(t, err)
	assert.True(t, IsCode(err, "E_FILE_NOT_FOUND"))

	_, err = c.CreateDataset(ctx, "alpha")
	require.Error(t, err)
	assert.True(t, IsCode(err, "E_DATASET_EXISTS"))

	var apiErr *APIError
	_, err = c.Transfer(ctx, "alpha", "a.png", "alpha", "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	// seeded files are not png data, so every re-encode fails
	_, err = c.Compress(ctx, "alpha")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "E_OPERATION_FAILED", apiErr.Code)
}

func TestToken(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t, "secret")

	_, err := c.Folders(ctx)
	require.NoError(t, err)

	anon, err := New(strings.TrimSuffix(c.client.BaseURL, "/"))
	require.NoError(t, err)
	_, err = anon.Folders(ctx)
	assert.True(t, IsCode(err, "E_ACCESS_DENIED"))
}
