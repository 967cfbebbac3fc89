package nodes

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	black = color.RGBA{A: 255}
)

func newSaver(t *testing.T) (*Saver, string) {
	out := t.TempDir()
	return NewSaver(out, dataset.NewLockManager(true, time.Second)), out
}

func TestSaver_NumbersEntries(t *testing.T) {
	s, out := newSaver(t)
	ctx := context.Background()

	first, err := s.Save(ctx, SaveInput{Dataset: "MyDataset", Target: solid(4, 3, red), Caption: "  hello \n"})
	require.NoError(t, err)
	assert.Equal(t, "image_00001.png", first.Filename)
	assert.Equal(t, []string{"img/image_00001.png", "Control1/image_00001.png", "img/image_00001.txt"}, first.Written)

	// a gap in numbering continues after the highest
	require.NoError(t, os.WriteFile(filepath.Join(out, "MyDataset", "img", "image_00041.png"), nil, 0o644))
	second, err := s.Save(ctx, SaveInput{Dataset: "MyDataset", Target: solid(4, 3, red)})
	require.NoError(t, err)
	assert.Equal(t, "image_00042.png", second.Filename)

	for _, folder := range dataset.Folders {
		assert.DirExists(t, filepath.Join(out, "MyDataset", folder))
	}
	caption, err := os.ReadFile(filepath.Join(out, "MyDataset", "img", "image_00001.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(caption))
}

func TestSaver_BlackControlOnlyWithoutControls(t *testing.T) {
	s, out := newSaver(t)
	ctx := context.Background()

	_, err := s.Save(ctx, SaveInput{Dataset: "ds", Target: solid(5, 2, red)})
	require.NoError(t, err)

	c1, err := DecodeFile(filepath.Join(out, "ds", "Control1", "image_00001.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(5, 2), c1.Bounds().Size())
	assert.Equal(t, black, c1.RGBAAt(4, 1))

	res, err := s.Save(ctx, SaveInput{Dataset: "ds", Target: solid(5, 2, red), Control2: solid(5, 2, green)})
	require.NoError(t, err)
	assert.Equal(t, []string{"img/image_00002.png", "Control2/image_00002.png"}, res.Written)
	assert.NoFileExists(t, filepath.Join(out, "ds", "Control1", "image_00002.png"))
}

func TestSaver_Errors(t *testing.T) {
	s, _ := newSaver(t)
	ctx := context.Background()

	_, err := s.Save(ctx, SaveInput{Dataset: "ds"})
	assert.ErrorIs(t, err, ErrNoTarget)

	for _, name := range []string{"", "  ", "../escape", "."} {
		_, err = s.Save(ctx, SaveInput{Dataset: name, Target: solid(1, 1, red)})
		assert.ErrorIs(t, err, ErrInvalidDataset, name)
	}
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 95}))
}

func TestLoader(t *testing.T) {
	s, out := newSaver(t)
	ctx := context.Background()

	_, err := s.Save(ctx, SaveInput{Dataset: "ds", Target: solid(3, 3, red), Control1: solid(3, 3, green), Caption: "first"})
	require.NoError(t, err)
	_, err = s.Save(ctx, SaveInput{Dataset: "ds", Target: solid(2, 4, green)})
	require.NoError(t, err)
	writeJPEG(t, filepath.Join(out, "ds", "img", "photo.jpg"), solid(6, 6, red))
	require.NoError(t, os.WriteFile(filepath.Join(out, "ds", "img", "broken.png"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "ds", "Control2", "image_00001.png"), []byte("nope"), 0o644))

	l := NewLoader(out)

	items, err := l.Load(LoadInput{DatasetPath: " ds ", Mode: ModeList})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "image_00001.png", items[0].Filename)
	assert.Equal(t, "image_00002.png", items[1].Filename)
	assert.Equal(t, "photo.jpg", items[2].Filename)

	first := items[0]
	assert.Equal(t, "first", first.Caption)
	assert.Equal(t, red, first.Target.RGBAAt(0, 0))
	assert.Equal(t, green, first.Controls[0].RGBAAt(2, 2))
	// undecodable and missing controls are black
	assert.Equal(t, black, first.Controls[1].RGBAAt(0, 0))
	assert.Equal(t, image.Pt(3, 3), first.Controls[2].Bounds().Size())

	second := items[1]
	assert.Empty(t, second.Caption)
	assert.Equal(t, image.Pt(2, 4), second.Controls[2].Bounds().Size())

	items, err = l.Load(LoadInput{DatasetPath: filepath.Join(out, "ds"), Mode: ModeManual, ManualFilename: "photo.png"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "photo.jpg", items[0].Filename)

	items, err = l.Load(LoadInput{DatasetPath: "ds", Mode: ModeManual, ManualFilename: "image_00002.png"})
	require.NoError(t, err)
	assert.Equal(t, "image_00002.png", items[0].Filename)
}

func TestLoader_Errors(t *testing.T) {
	out := t.TempDir()
	l := NewLoader(out)

	_, err := l.Load(LoadInput{DatasetPath: "missing", Mode: ModeList})
	assert.ErrorIs(t, err, ErrDatasetPathNotFound)

	_, err = l.Load(LoadInput{DatasetPath: "x", Mode: "Random"})
	assert.ErrorIs(t, err, ErrInvalidMode)

	require.NoError(t, os.MkdirAll(filepath.Join(out, "noimg"), 0o755))
	_, err = l.Load(LoadInput{DatasetPath: "noimg", Mode: ModeList})
	assert.ErrorIs(t, err, dataset.ErrImageDirNotFound)

	require.NoError(t, os.MkdirAll(filepath.Join(out, "empty", "img"), 0o755))
	_, err = l.Load(LoadInput{DatasetPath: "empty", Mode: ModeList})
	assert.ErrorIs(t, err, dataset.ErrNoImages)

	require.NoError(t, os.MkdirAll(filepath.Join(out, "bad", "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "bad", "img", "a.png"), []byte("nope"), 0o644))
	_, err = l.Load(LoadInput{DatasetPath: "bad", Mode: ModeList})
	assert.ErrorIs(t, err, ErrNothingLoaded)

	_, err = l.Load(LoadInput{DatasetPath: "bad", Mode: ModeManual, ManualFilename: "zzz.png"})
	assert.ErrorIs(t, err, ErrFilenameNotFound)
}

func TestNextFilename(t *testing.T) {
	dir := t.TempDir()
	name, err := nextFilename(dir)
	require.NoError(t, err)
	assert.Equal(t, "image_00001.png", name)

	for _, f := range []string{"image_00007.png", "image_7.jpg", "other_00099.png", "image_00003.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}
	name, err = nextFilename(dir)
	require.NoError(t, err)
	assert.Equal(t, "image_00008.png", name)
}
