package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openmined/dsmanager/internal/utils"
)

type TransferParams struct {
	// Source is the dataset currently holding the sample.
	Source string
	// Target receives the sample under a fresh identifier.
	Target string
	// Linked optionally names a second source whose same-named sample moves too.
	Linked   string
	Filename string
}

// Transfer moves every file of a sample into the target dataset under a
// fresh identifier, then does the same for the linked dataset. The linked leg
// gets its own identifier and its failures never undo the primary leg.
func (s *DatasetService) Transfer(ctx context.Context, p TransferParams) (*TransferResult, error) {
	if err := validateFilename(p.Filename); err != nil {
		return nil, err
	}
	if p.Target == "" {
		return nil, fmt.Errorf("%w: target folder is required", ErrInvalidPath)
	}

	src, err := s.Resolve(p.Source)
	if err != nil {
		return nil, err
	}
	dst, err := s.Resolve(p.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if src.Dir == dst.Dir {
		return nil, ErrSameDataset
	}
	if !utils.DirExists(dst.FolderDir(DirImg)) {
		return nil, fmt.Errorf("target: %w", ErrImageDirNotFound)
	}

	var linked *Dataset
	var linkedErr *FileError
	if p.Linked != "" {
		linked, err = s.Resolve(p.Linked)
		switch {
		case errors.Is(err, ErrDatasetNotFound):
			linkedErr = missingDataset(p.Linked)
			linked = nil
		case err != nil:
			return nil, fmt.Errorf("linked: %w", err)
		case linked.Dir == dst.Dir:
			linkedErr = &FileError{Path: p.Linked, Op: OpMove, Err: ErrSameDataset}
			linked = nil
		}
	}

	unlock, err := s.lock(ctx, src, dst, linked)
	if err != nil {
		return nil, err
	}
	defer unlock()

	basename := Stem(p.Filename)
	res := &TransferResult{Target: dst.Path}

	res.Primary = s.transferLeg(src, dst, p.Filename, basename)
	if len(res.Primary.Moved) == 0 {
		s.notify(src, dst)
		if err := allFailed(res.Primary.Errors); err != nil {
			return res, err
		}
		return res, ErrNoFilesToTransfer
	}
	res.Success = true

	switch {
	case linkedErr != nil:
		res.Linked = &TransferLeg{Source: p.Linked, Filename: p.Filename, Moved: []MovedFile{}, Errors: []*FileError{linkedErr}}
	case linked != nil:
		res.Linked = s.transferLeg(linked, dst, p.Filename, basename)
		if len(res.Linked.Moved) == 0 && len(res.Linked.Errors) == 0 {
			res.Linked.Errors = append(res.Linked.Errors, notFound(linked.Path+"/"+relPath(DirImg, p.Filename)))
		}
	}

	s.notify(src, dst, linked)

	attrs := []any{"source", src.Path, "target", dst.Path, "filename", p.Filename, "new", res.Primary.NewFilename, "moved", len(res.Primary.Moved)}
	if res.Linked != nil {
		attrs = append(attrs, "linked", res.Linked.Source, "linkedMoved", len(res.Linked.Moved))
	}
	slog.Info("transfer", attrs...)

	return res, nil
}

// transferLeg moves one source's files for basename into dst. The identifier
// is drawn against a snapshot of the stems already present in dst.
func (s *DatasetService) transferLeg(src, dst *Dataset, filename, basename string) *TransferLeg {
	leg := &TransferLeg{
		Source:   src.Path,
		Filename: filename,
		Moved:    []MovedFile{},
	}

	taken, err := existingStems(dst)
	if err != nil {
		leg.Errors = append(leg.Errors, &FileError{Path: dst.Path, Op: OpRead, Err: err})
		return leg
	}
	newName := s.names.Generate(taken)
	leg.NewFilename = newName + filepath.Ext(filename)

	imgMoved := false
	for _, folder := range Folders {
		names, err := sampleImages(src.FolderDir(folder), basename)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			leg.Errors = append(leg.Errors, &FileError{Path: folder, Op: OpRead, Err: err})
			continue
		}
		if len(names) == 0 {
			continue
		}

		if err := utils.EnsureDir(dst.FolderDir(folder)); err != nil {
			leg.Errors = append(leg.Errors, &FileError{Path: dst.Path + "/" + folder, Op: OpMkdir, Err: err})
			continue
		}

		for _, name := range names {
			moved := newName + filepath.Ext(name)
			if !s.moveInto(src, dst, folder, name, moved, leg) || folder != DirImg {
				continue
			}
			imgMoved = true
			if name == filename {
				leg.NewFilename = moved
			}
		}
	}

	// the caption follows only an image that arrived in img
	captionName := basename + CaptionExt
	if _, err := os.Lstat(src.FilePath(DirImg, captionName)); err == nil && imgMoved {
		s.moveInto(src, dst, DirImg, captionName, newName+CaptionExt, leg)
	}

	return leg
}

func (s *DatasetService) moveInto(src, dst *Dataset, folder, name, newName string, leg *TransferLeg) bool {
	from := src.FilePath(folder, name)
	to := dst.FilePath(folder, newName)
	if err := moveFile(from, to); err != nil {
		leg.Errors = append(leg.Errors, &FileError{Path: relPath(folder, name), Op: OpMove, Err: err})
		return false
	}
	leg.Moved = append(leg.Moved, MovedFile{
		From: src.Path + "/" + relPath(folder, name),
		To:   dst.Path + "/" + relPath(folder, newName),
	})
	return true
}
