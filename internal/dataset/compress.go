package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/openmined/dsmanager/internal/utils"
	"golang.org/x/sync/errgroup"
)

var pngEncoder = &png.Encoder{CompressionLevel: png.BestCompression}

type pngJob struct {
	folder string
	name   string
}

// Compress re-encodes every PNG of the dataset with the best zlib level and
// keeps the new encoding only when it is smaller. Pixels are unchanged.
func (s *DatasetService) Compress(ctx context.Context, rel string) (*CompressResult, error) {
	ds, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}
	if !utils.DirExists(ds.FolderDir(DirImg)) {
		return nil, ErrImageDirNotFound
	}

	unlock, err := s.lock(ctx, ds)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var jobs []pngJob
	for _, folder := range Folders {
		names, err := readFiles(ds.FolderDir(folder))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("read %s: %w", folder, err)
		}
		for _, name := range names {
			if strings.EqualFold(filepath.Ext(name), ".png") {
				jobs = append(jobs, pngJob{folder: folder, name: name})
			}
		}
	}

	res := &CompressResult{Scanned: len(jobs)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			before, after, err := recompressPNG(ds.FilePath(job.folder, job.name))

			mu.Lock()
			defer mu.Unlock()
			res.OriginalBytes += before
			if err != nil {
				res.NewBytes += before
				res.Errors = append(res.Errors, &FileError{Path: relPath(job.folder, job.name), Op: OpEncode, Err: err})
				return nil
			}
			res.NewBytes += after
			if after < before {
				res.Compressed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.OriginalSizeMB = toMB(res.OriginalBytes)
	res.NewSizeMB = toMB(res.NewBytes)
	res.SavingsMB = toMB(res.OriginalBytes - res.NewBytes)
	if res.OriginalBytes > 0 {
		res.SavingsPercent = round2(float64(res.OriginalBytes-res.NewBytes) / float64(res.OriginalBytes) * 100)
	}

	if res.Compressed > 0 {
		s.notify(ds)
	}

	slog.Info("compress", "dataset", ds.Path, "scanned", res.Scanned, "compressed", res.Compressed,
		"before", humanize.Bytes(uint64(res.OriginalBytes)), "after", humanize.Bytes(uint64(res.NewBytes)), "errors", len(res.Errors))

	// one error per failed file
	if len(res.Errors) == res.Scanned {
		if err := allFailed(res.Errors); err != nil {
			return res, err
		}
	}
	res.Success = true
	return res, nil
}

// recompressPNG returns the size before and after. The file is rewritten only
// when the new encoding is smaller.
func recompressPNG(path string) (int64, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	before := int64(len(data))

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return before, before, fmt.Errorf("decode: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return before, before, fmt.Errorf("encode: %w", err)
	}

	after := int64(buf.Len())
	if after >= before {
		return before, before, nil
	}

	if _, err := utils.WriteFileAtomic(path, &buf); err != nil {
		return before, before, err
	}
	return before, after, nil
}

func toMB(n int64) float64 {
	return round2(float64(n) / (1024 * 1024))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
