package nodes

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/openmined/dsmanager/internal/utils"
)

var (
	ErrNoTarget       = errors.New("target image is required")
	ErrInvalidDataset = errors.New("invalid dataset name")

	regexSavedName = regexp.MustCompile(`^image_(\d+)\.png`)
)

type SaveInput struct {
	Dataset  string
	Target   image.Image
	Control1 image.Image
	Control2 image.Image
	Control3 image.Image
	Caption  string
}

type SaveResult struct {
	Dataset  string   `json:"dataset" yaml:"dataset"`
	Filename string   `json:"filename" yaml:"filename"`
	Written  []string `json:"written" yaml:"written"`
}

// Saver appends numbered entries to datasets under an output directory.
type Saver struct {
	outputDir string
	locks     *dataset.LockManager
	mu        sync.Mutex
}

func NewSaver(outputDir string, locks *dataset.LockManager) *Saver {
	return &Saver{outputDir: outputDir, locks: locks}
}

// Save writes the next image_NNNNN.png entry. When no control image is given
// a black Control1 the size of the target is written instead.
func (s *Saver) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	if in.Target == nil {
		return nil, ErrNoTarget
	}
	name := strings.TrimSpace(in.Dataset)
	if name == "" {
		return nil, ErrInvalidDataset
	}
	dir, err := utils.JoinWithin(s.outputDir, name)
	if err != nil || dir == filepath.Clean(s.outputDir) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataset, in.Dataset)
	}

	for _, folder := range dataset.Folders {
		if err := utils.EnsureDir(filepath.Join(dir, folder)); err != nil {
			return nil, fmt.Errorf("create %s: %w", folder, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ds := &dataset.Dataset{Name: filepath.Base(dir), Path: filepath.ToSlash(name), Dir: dir}
	unlock, err := s.locks.Lock(ctx, ds)
	if err != nil {
		return nil, err
	}
	defer unlock()

	filename, err := nextFilename(ds.FolderDir(dataset.DirImg))
	if err != nil {
		return nil, err
	}

	res := &SaveResult{Dataset: ds.Path, Filename: filename}
	write := func(folder string, img image.Image) error {
		if err := writePNG(ds.FilePath(folder, filename), img); err != nil {
			return err
		}
		res.Written = append(res.Written, folder+"/"+filename)
		return nil
	}

	if err := write(dataset.DirImg, in.Target); err != nil {
		return nil, err
	}

	control1 := in.Control1
	if in.Control1 == nil && in.Control2 == nil && in.Control3 == nil {
		control1 = blackImage(in.Target.Bounds().Size())
	}
	controls := []struct {
		folder string
		img    image.Image
	}{
		{dataset.DirControl1, control1},
		{dataset.DirControl2, in.Control2},
		{dataset.DirControl3, in.Control3},
	}
	for _, c := range controls {
		if c.img == nil {
			continue
		}
		if err := write(c.folder, c.img); err != nil {
			return res, err
		}
	}

	if caption := strings.TrimSpace(in.Caption); caption != "" {
		captionName := dataset.Stem(filename) + dataset.CaptionExt
		if _, err := utils.WriteFileAtomic(ds.FilePath(dataset.DirImg, captionName), strings.NewReader(caption)); err != nil {
			return res, fmt.Errorf("write caption: %w", err)
		}
		res.Written = append(res.Written, dataset.DirImg+"/"+captionName)
	}

	slog.Info("dataset entry saved", "dataset", ds.Path, "filename", filename, "files", len(res.Written))
	return res, nil
}

// nextFilename returns image_NNNNN.png one past the highest number in dir.
func nextFilename(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	highest := 0
	for _, e := range entries {
		m := regexSavedName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("image_%05d.png", highest+1), nil
}
