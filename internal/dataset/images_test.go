package dataset

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListImages(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{
		"img/b.jpg":  "b",
		"img/a.png":  "a",
		"img/a.txt":  "caption",
		"img/.a.png": "dotted",
		"img/.png":   "no stem",
		"img/C.WEBP": "c",
		"img/.x.tmp": "in flight",
	})
	ds, err := svc.Resolve("ds")
	require.NoError(t, err)

	images, err := ListImages(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{".a.png", "C.WEBP", "a.png", "b.jpg"}, images)
}

func TestImagePath(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{"Control1/a.png": "a1"})
	ds, err := svc.Resolve("ds")
	require.NoError(t, err)

	p, err := svc.ImagePath(ds, DirControl1, "a.png")
	require.NoError(t, err)
	assert.Equal(t, ds.FilePath(DirControl1, "a.png"), p)

	_, err = svc.ImagePath(ds, "Control9", "a.png")
	assert.ErrorIs(t, err, ErrInvalidFolder)

	_, err = svc.ImagePath(ds, DirImg, "../a.png")
	assert.ErrorIs(t, err, ErrInvalidFilename)

	_, err = svc.ImagePath(ds, DirImg, "a.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestCaptions(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{"img/a.png": "a"})
	ds, err := svc.Resolve("ds")
	require.NoError(t, err)
	ctx := context.Background()

	caption, err := svc.Caption(ds, "a.png")
	require.NoError(t, err)
	assert.Empty(t, caption)

	require.NoError(t, svc.SetCaption(ctx, ds, "a.png", "  a red apple \n"))
	caption, err = svc.Caption(ds, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "a red apple", caption)

	require.NoError(t, svc.SetCaption(ctx, ds, "a.png", "   "))
	assert.NoFileExists(t, ds.CaptionPath("a"))

	// removing an absent caption is not an error
	require.NoError(t, svc.SetCaption(ctx, ds, "a.png", ""))

	assert.ErrorIs(t, svc.SetCaption(ctx, ds, "a.txt", "x"), ErrInvalidFilename)
}

func TestSaveImage(t *testing.T) {
	svc, root := newTestService(t)
	makeDataset(t, root, "ds", false, map[string]string{"img/a.png": "old"})
	ds, err := svc.Resolve("ds")
	require.NoError(t, err)

	var changed int
	svc.OnChange(func(*Dataset) { changed++ })

	n, err := svc.SaveImage(context.Background(), ds, "a.png", strings.NewReader("new bytes"))
	require.NoError(t, err)
	assert.EqualValues(t, 9, n)
	assert.Equal(t, 1, changed)

	data, err := os.ReadFile(ds.FilePath(DirImg, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "new bytes", string(data))

	_, err = svc.SaveImage(context.Background(), ds, "a/b.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidFilename)
}
