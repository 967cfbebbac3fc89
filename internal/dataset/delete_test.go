package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelete(t *testing.T) {
	svc, root := newTestService(t)
	dir := makeDataset(t, root, "pets", true, map[string]string{
		"img/cat.png":      "cat",
		"img/cat.txt":      "a cat",
		"Control1/cat.png": "cat1",
		"img/dog.png":      "dog",
	})

	res, err := svc.Delete(context.Background(), "pets", "cat.png", "")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, []string{"img/cat.txt", "img/cat.png", "Control1/cat.png"}, res.Deleted)
	assert.Equal(t, []string{"Control2/cat.png not found", "Control3/cat.png not found"}, errorStrings(res.Errors))

	assert.Equal(t, map[string]string{"img/dog.png": "dog"}, snapshot(t, dir))
}

func TestDelete_EverySlotReported(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", true, map[string]string{
		"img/abc123.png":      "x",
		"Control1/abc123.png": "y",
	})

	res, err := svc.Delete(context.Background(), "ds", "abc123.png", "")
	require.NoError(t, err)
	assert.Len(t, res.Deleted, 2)
	assert.Len(t, res.Errors, 3)
	assert.Equal(t, 5, len(res.Deleted)+len(res.Errors))
}

func TestDelete_Linked(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "train", false, map[string]string{"img/x.png": "x"})
	linkedDir := makeDataset(t, root, "group/masks", false, map[string]string{
		"img/x.png":      "mx",
		"Control1/x.png": "mx1",
	})

	res, err := svc.Delete(context.Background(), "train", "x.png", "group/masks")
	require.NoError(t, err)

	assert.Equal(t, []string{"img/x.png", "group/masks/img/x.png", "group/masks/Control1/x.png"}, res.Deleted)
	assert.Contains(t, errorStrings(res.Errors), "group/masks/img/x.txt not found")
	assert.Empty(t, snapshot(t, linkedDir))
}

func TestDelete_MissingLinkedDataset(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "train", false, map[string]string{"img/x.png": "x"})

	res, err := svc.Delete(context.Background(), "train", "x.png", "gone")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"img/x.png"}, res.Deleted)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "gone", res.Errors[0].Path)
	assert.ErrorIs(t, res.Errors[0], ErrDatasetNotFound)
}

func TestDelete_NothingFound(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{"img/other.png": "o"})

	res, err := svc.Delete(context.Background(), "ds", "cat.png", "")
	assert.ErrorIs(t, err, ErrNoFilesToDelete)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Empty(t, res.Deleted)
	assert.Len(t, res.Errors, 5)
	for _, e := range res.Errors {
		assert.True(t, e.NotFound())
	}
}

func TestDelete_ContinuesAfterFailure(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{
		"img/cat.png":      "cat",
		"img/cat.txt":      "caption",
		"Control1/cat.png": "cat1",
	})

	injected := errors.New("permission denied")
	orig := removeFile
	removeFile = func(name string) error {
		if strings.HasSuffix(filepath.ToSlash(name), "img/cat.png") {
			return injected
		}
		return orig(name)
	}
	t.Cleanup(func() { removeFile = orig })

	res, err := svc.Delete(context.Background(), "ds", "cat.png", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"img/cat.txt", "Control1/cat.png"}, res.Deleted)
	assert.Contains(t, errorStrings(res.Errors), "failed to delete img/cat.png: permission denied")
}

func TestDelete_InvalidFilename(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{"img/a.png": "a"})

	for _, name := range []string{"", "../a.png", "sub/a.png", "a.txt", "a"} {
		_, err := svc.Delete(context.Background(), "ds", name, "")
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
	}
}

func TestDelete_EveryRemovalFails(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{
		"img/cat.png":      "cat",
		"Control1/cat.png": "cat1",
	})

	orig := removeFile
	removeFile = func(string) error { return errors.New("permission denied") }
	t.Cleanup(func() { removeFile = orig })

	res, err := svc.Delete(context.Background(), "ds", "cat.png", "")
	assert.ErrorIs(t, err, ErrAllFilesFailed)
	assert.NotErrorIs(t, err, ErrNoFilesToDelete)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Empty(t, res.Deleted)
	assert.Contains(t, errorStrings(res.Errors), "failed to delete img/cat.png: permission denied")
}
