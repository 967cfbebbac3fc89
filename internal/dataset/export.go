package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/openmined/dsmanager/internal/utils"
	"golang.org/x/sync/errgroup"
)

// exportSuffixes name the flattened output folders, one per dataset folder.
var exportSuffixes = map[string]string{
	DirImg:      "_img",
	DirControl1: "_ctr1",
	DirControl2: "_ctr2",
	DirControl3: "_ctr3",
}

// Export copies each non-empty folder of the dataset to <dest>/<name><suffix>.
// A dest of the form s3://bucket/prefix uploads to the configured object store.
// Captions travel with the img folder.
func (s *DatasetService) Export(ctx context.Context, rel, dest string) (*ExportResult, error) {
	ds, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dest) == "" {
		return nil, fmt.Errorf("%w: export path is required", ErrInvalidPath)
	}

	var target exportTarget
	if strings.HasPrefix(dest, "s3://") {
		if s.uploader == nil {
			return nil, ErrNoUploader
		}
		target, err = newS3Target(dest, s.uploader)
	} else {
		target, err = newDirTarget(dest)
	}
	if err != nil {
		return nil, err
	}

	type folderPlan struct {
		folder  string
		outName string
		names   []string
	}
	var plan []folderPlan
	for _, folder := range Folders {
		names, err := readFiles(ds.FolderDir(folder))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("read %s: %w", folder, err)
		}
		if len(names) > 0 {
			plan = append(plan, folderPlan{folder: folder, outName: ds.Name + exportSuffixes[folder], names: names})
		}
	}

	res := &ExportResult{
		ExportPath: target.String(),
		Exported:   make(map[string]*ExportedFolder, len(plan)),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, p := range plan {
		out := &ExportedFolder{Path: target.Folder(p.outName)}
		res.Exported[p.outName] = out

		for _, name := range p.names {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				err := target.Put(gctx, p.outName, name, ds.FilePath(p.folder, name))

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					res.Errors = append(res.Errors, &FileError{Path: relPath(p.folder, name), Op: OpCopy, Err: err})
					return nil
				}
				out.Files++
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("export", "dataset", ds.Path, "dest", res.ExportPath, "folders", len(res.Exported), "errors", len(res.Errors))

	exported := 0
	for _, out := range res.Exported {
		exported += out.Files
	}
	if exported == 0 {
		if err := allFailed(res.Errors); err != nil {
			return res, err
		}
	}
	res.Success = true
	return res, nil
}

type exportTarget interface {
	fmt.Stringer
	Folder(name string) string
	Put(ctx context.Context, folder, name, src string) error
}

type dirTarget struct {
	root string
}

func newDirTarget(dest string) (*dirTarget, error) {
	root, err := utils.ResolvePath(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, err)
	}
	return &dirTarget{root: root}, nil
}

func (t *dirTarget) String() string { return t.root }

func (t *dirTarget) Folder(name string) string {
	return filepath.Join(t.root, name)
}

func (t *dirTarget) Put(_ context.Context, folder, name, src string) error {
	return utils.CopyFile(src, filepath.Join(t.root, folder, name))
}

type s3Target struct {
	bucket   string
	prefix   string
	uploader ObjectUploader
}

func newS3Target(dest string, uploader ObjectUploader) (*s3Target, error) {
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid s3 url %q", ErrInvalidPath, dest)
	}
	return &s3Target{
		bucket:   u.Host,
		prefix:   strings.Trim(u.Path, "/"),
		uploader: uploader,
	}, nil
}

func (t *s3Target) String() string {
	return "s3://" + path.Join(t.bucket, t.prefix)
}

func (t *s3Target) Folder(name string) string {
	return "s3://" + path.Join(t.bucket, t.prefix, name)
}

func (t *s3Target) Put(ctx context.Context, folder, name, src string) error {
	return t.uploader.PutFile(ctx, t.bucket, path.Join(t.prefix, folder, name), src)
}
