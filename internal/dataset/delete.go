package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/openmined/dsmanager/internal/utils"
)

// Delete removes the caption and the four folder copies of filename from the
// dataset at rel, then from linkedRel when given. Every slot is reported:
// deleted, failed or not found. When nothing was removed anywhere the result is
// still populated and the error is ErrAllFilesFailed if any removal failed,
// ErrNoFilesToDelete otherwise.
func (s *DatasetService) Delete(ctx context.Context, rel, filename, linkedRel string) (*DeleteResult, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	ds, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{
		Deleted: []string{},
		Errors:  []*FileError{},
	}

	var linked *Dataset
	if linkedRel != "" {
		linked, err = s.Resolve(linkedRel)
		if err != nil {
			if !errors.Is(err, ErrDatasetNotFound) {
				return nil, err
			}
			res.Errors = append(res.Errors, missingDataset(linkedRel))
			linked = nil
		}
	}

	unlock, err := s.lock(ctx, ds, linked)
	if err != nil {
		return nil, err
	}
	defer unlock()

	deleteSample(ds, "", filename, res)
	if linked != nil {
		deleteSample(linked, linked.Path+"/", filename, res)
	}

	res.Success = len(res.Deleted) > 0
	s.notify(ds, linked)

	slog.Info("delete", "dataset", ds.Path, "linked", linkedRel, "filename", filename, "deleted", len(res.Deleted), "errors", len(res.Errors))

	if !res.Success {
		if err := allFailed(res.Errors); err != nil {
			return res, err
		}
		return res, ErrNoFilesToDelete
	}
	return res, nil
}

type deleteSlot struct {
	path    string
	display string
}

// deleteSample appends one dataset's outcomes to res; prefix disambiguates
// entries of a linked dataset.
func deleteSample(ds *Dataset, prefix, filename string, res *DeleteResult) {
	captionName := Stem(filename) + CaptionExt
	targets := []deleteSlot{
		{ds.FilePath(DirImg, captionName), prefix + relPath(DirImg, captionName)},
	}
	for _, folder := range Folders {
		targets = append(targets, deleteSlot{ds.FilePath(folder, filename), prefix + relPath(folder, filename)})
	}

	for _, t := range targets {
		if _, err := os.Lstat(t.path); errors.Is(err, fs.ErrNotExist) {
			res.Errors = append(res.Errors, notFound(t.display))
			continue
		}
		if err := removeFile(t.path); err != nil {
			res.Errors = append(res.Errors, &FileError{Path: t.display, Op: OpDelete, Err: err})
			continue
		}
		res.Deleted = append(res.Deleted, t.display)
	}
}

func validateFilename(filename string) error {
	if !utils.IsBaseName(filename) || !IsImageFile(filename) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return nil
}

func missingDataset(rel string) *FileError {
	return &FileError{Path: rel, Op: OpRead, Err: fmt.Errorf("%w: %w", ErrDatasetNotFound, fs.ErrNotExist)}
}
