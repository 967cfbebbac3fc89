package dataset

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// Reshuffle gives every sample a fresh identifier and renames all of its
// files to match. A failing rename rolls back the files already renamed for
// that sample and the remaining samples are still processed. When no file was
// renamed and some failed, the result comes back with ErrAllFilesFailed.
func (s *DatasetService) Reshuffle(ctx context.Context, rel string) (*ReshuffleResult, error) {
	ds, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, ds)
	if err != nil {
		return nil, err
	}
	defer unlock()

	idx, err := BuildIndex(ds)
	if err != nil {
		return nil, err
	}

	used, err := existingStems(ds)
	if err != nil {
		return nil, err
	}

	order := idx.Basenames()
	s.names.Reorder(order)

	res := &ReshuffleResult{
		Renames: make(map[string]string, len(order)),
	}
	for _, oldName := range order {
		newName := s.names.Generate(used)
		used.Add(newName)
		res.Count++

		renamed, errs := renameSample(ds, oldName, newName, idx[oldName])
		res.FilesRenamed += renamed
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		if renamed > 0 {
			res.Renames[oldName] = newName
		}
	}

	s.notify(ds)

	slog.Info("reshuffle", "dataset", ds.Path, "samples", res.Count, "renamed", res.FilesRenamed, "errors", len(res.Errors))

	if res.FilesRenamed == 0 {
		if err := allFailed(res.Errors); err != nil {
			return res, err
		}
	}
	res.Success = true
	return res, nil
}

type renameStep struct {
	from, to string
}

// renameSample moves every file of one sample to newName. Files that vanished
// since the index was built are skipped.
func renameSample(ds *Dataset, oldName, newName string, files FileSet) (int, []*FileError) {
	done := make([]renameStep, 0, files.Count())

	for _, ref := range files.Files() {
		from := ds.FilePath(ref.Folder, oldName+ref.Ext)
		to := ds.FilePath(ref.Folder, newName+ref.Ext)

		if _, err := os.Lstat(from); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err := renameNoReplace(from, to); err != nil {
			errs := []*FileError{{Path: relPath(ref.Folder, oldName+ref.Ext), Op: OpRename, Err: err}}
			return len(done) - revertSample(ds, done, &errs), errs
		}
		done = append(done, renameStep{from: from, to: to})
	}

	return len(done), nil
}

// revertSample undoes done in reverse order and returns how many files went back.
func revertSample(ds *Dataset, done []renameStep, errs *[]*FileError) int {
	reverted := 0
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if err := os.Rename(step.to, step.from); err != nil {
			rel, _ := relSlash(ds.Dir, step.to)
			*errs = append(*errs, &FileError{Path: rel, Op: OpRevert, Err: err})
			continue
		}
		reverted++
	}
	return reverted
}
