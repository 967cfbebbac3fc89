package nodes

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/openmined/dsmanager/internal/utils"
)

type Mode string

const (
	ModeManual Mode = "Manual"
	ModeList   Mode = "List"
)

var (
	ErrDatasetPathNotFound = errors.New("dataset path not found")
	ErrFilenameNotFound    = errors.New("filename not found in dataset")
	ErrNothingLoaded       = errors.New("failed to load any images from the selection")
	ErrInvalidMode         = errors.New("invalid load mode")
)

type LoadInput struct {
	DatasetPath    string
	Mode           Mode
	ManualFilename string
}

// Item is one loaded sample. Controls are never nil: a missing or unreadable
// control is replaced by a black image the size of the target.
type Item struct {
	Filename string
	Target   *image.RGBA
	Controls [3]*image.RGBA
	Caption  string
}

// Loader reads dataset entries back as decoded images.
type Loader struct {
	outputDir string
}

func NewLoader(outputDir string) *Loader {
	return &Loader{outputDir: outputDir}
}

func (l *Loader) Load(in LoadInput) ([]*Item, error) {
	if in.Mode != ModeManual && in.Mode != ModeList {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, in.Mode)
	}

	dir, err := l.resolve(strings.TrimSpace(in.DatasetPath))
	if err != nil {
		return nil, err
	}
	ds := &dataset.Dataset{Name: filepath.Base(dir), Path: in.DatasetPath, Dir: dir}

	files, err := dataset.ListImages(ds)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", dataset.ErrNoImages, ds.FolderDir(dataset.DirImg))
	}

	if in.Mode == ModeManual {
		name, err := pickManual(files, strings.TrimSpace(in.ManualFilename))
		if err != nil {
			return nil, err
		}
		files = []string{name}
	}

	items := make([]*Item, 0, len(files))
	for _, name := range files {
		target, err := DecodeFile(ds.FilePath(dataset.DirImg, name))
		if err != nil {
			slog.Warn("load target", "dataset", dir, "filename", name, "error", err)
			continue
		}

		item := &Item{
			Filename: name,
			Target:   target,
			Caption:  readCaption(ds.CaptionPath(dataset.Stem(name))),
		}
		for i, folder := range []string{dataset.DirControl1, dataset.DirControl2, dataset.DirControl3} {
			item.Controls[i] = loadControl(ds.FilePath(folder, name), target.Bounds().Size())
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrNothingLoaded
	}

	slog.Info("dataset loaded", "dataset", dir, "mode", in.Mode, "items", len(items))
	return items, nil
}

// resolve tries the path as given, then relative to the output directory.
func (l *Loader) resolve(p string) (string, error) {
	if p != "" && utils.DirExists(p) {
		return filepath.Abs(p)
	}
	if joined, err := utils.JoinWithin(l.outputDir, p); err == nil && p != "" && utils.DirExists(joined) {
		return joined, nil
	}
	return "", fmt.Errorf("%w: %q", ErrDatasetPathNotFound, p)
}

// pickManual prefers an exact match and falls back to the first file with the same stem.
func pickManual(files []string, want string) (string, error) {
	for _, f := range files {
		if f == want {
			return f, nil
		}
	}
	stem := dataset.Stem(want)
	for _, f := range files {
		if dataset.Stem(f) == stem {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrFilenameNotFound, want)
}

func loadControl(path string, size image.Point) *image.RGBA {
	img, err := DecodeFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("load control", "path", path, "error", err)
		}
		return blackImage(size)
	}
	return img
}

func readCaption(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
