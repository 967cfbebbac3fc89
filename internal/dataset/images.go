package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/openmined/dsmanager/internal/utils"
)

// ListImages returns the sorted image filenames of the dataset's img folder.
func ListImages(ds *Dataset) ([]string, error) {
	names, err := readFiles(ds.FolderDir(DirImg))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrImageDirNotFound
	} else if err != nil {
		return nil, fmt.Errorf("read image directory: %w", err)
	}

	images := make([]string, 0, len(names))
	for _, name := range names {
		if IsImageFile(name) {
			images = append(images, name)
		}
	}
	sort.Strings(images)
	return images, nil
}

// ImagePath locates one image of a folder for serving.
func (s *DatasetService) ImagePath(ds *Dataset, folder, filename string) (string, error) {
	if !IsFolder(folder) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	if !utils.IsBaseName(filename) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	p := ds.FilePath(folder, filename)
	if !utils.FileExists(p) {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, relPath(folder, filename))
	}
	return p, nil
}

// Caption returns the caption text of the sample, empty when it has none.
func (s *DatasetService) Caption(ds *Dataset, filename string) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}

	data, err := os.ReadFile(ds.CaptionPath(Stem(filename)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("read caption: %w", err)
	}
	return string(data), nil
}

// SetCaption writes the caption of a sample. Blank text removes the file.
func (s *DatasetService) SetCaption(ctx context.Context, ds *Dataset, filename, caption string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	if !utils.DirExists(ds.FolderDir(DirImg)) {
		return ErrImageDirNotFound
	}

	unlock, err := s.lock(ctx, ds)
	if err != nil {
		return err
	}
	defer unlock()

	path := ds.CaptionPath(Stem(filename))
	caption = strings.TrimSpace(caption)
	if caption == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove caption: %w", err)
		}
	} else if _, err := utils.WriteFileAtomic(path, strings.NewReader(caption)); err != nil {
		return fmt.Errorf("write caption: %w", err)
	}

	s.notify(ds)
	slog.Debug("caption saved", "dataset", ds.Path, "filename", filename, "length", len(caption))
	return nil
}

// SaveImage replaces img/<filename> with the contents of r.
func (s *DatasetService) SaveImage(ctx context.Context, ds *Dataset, filename string, r io.Reader) (int64, error) {
	if err := validateFilename(filename); err != nil {
		return 0, err
	}
	if !utils.DirExists(ds.FolderDir(DirImg)) {
		return 0, ErrImageDirNotFound
	}

	unlock, err := s.lock(ctx, ds)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := utils.WriteFileAtomic(ds.FilePath(DirImg, filename), r)
	if err != nil {
		return n, fmt.Errorf("write image: %w", err)
	}

	s.notify(ds)
	slog.Info("image saved", "dataset", ds.Path, "filename", filename, "size", n)
	return n, nil
}
