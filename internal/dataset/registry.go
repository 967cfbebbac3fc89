package dataset

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	regexDatasetName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// datasets live directly under the root or one group level below it
	datasetGlobs = []string{"*/" + DirImg, "*/*/" + DirImg}
)

// ListDatasets discovers every directory that qualifies as a dataset.
func (s *DatasetService) ListDatasets() ([]*Dataset, error) {
	fsys := os.DirFS(s.root)

	var matches []string
	for _, pattern := range datasetGlobs {
		found, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("scan datasets: %w", err)
		}
		matches = append(matches, found...)
	}

	datasets := make([]*Dataset, 0, len(matches))
	for _, match := range matches {
		rel := path.Dir(match)
		if hiddenPath(rel) || IsFolder(path.Base(rel)) {
			continue
		}
		if !isDatasetDir(fsys, rel) {
			continue
		}
		datasets = append(datasets, s.datasetAt(filepath.Join(s.root, filepath.FromSlash(rel))))
	}

	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Path < datasets[j].Path })
	return datasets, nil
}

// CreateDataset makes a new top-level dataset with all four folders.
func (s *DatasetService) CreateDataset(name string) (*Dataset, error) {
	if !regexDatasetName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDatasetExists, name)
	}

	for _, folder := range Folders {
		if err := os.MkdirAll(filepath.Join(dir, folder), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", folder, err)
		}
	}

	ds := s.datasetAt(dir)
	slog.Info("dataset created", "dataset", ds.Path)
	return ds, nil
}

func isDatasetDir(fsys fs.FS, rel string) bool {
	for _, folder := range requiredFolders {
		info, err := fs.Stat(fsys, path.Join(rel, folder))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

func hiddenPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func relSlash(root, dir string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func baseSlash(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}
