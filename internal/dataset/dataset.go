package dataset

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/openmined/dsmanager/internal/utils"
)

const (
	DirImg      = "img"
	DirControl1 = "Control1"
	DirControl2 = "Control2"
	DirControl3 = "Control3"

	CaptionExt = ".txt"

	// lock file kept at the dataset root, ignored by every scan
	lockFileName = ".dsmanager.lock"
)

var (
	// Folders is the scan order shared by every multi-folder operation.
	Folders = []string{DirImg, DirControl1, DirControl2, DirControl3}

	// ImageExts are matched case-insensitively.
	ImageExts = []string{".png", ".jpg", ".jpeg", ".webp"}

	// requiredFolders decide whether a directory qualifies as a dataset.
	requiredFolders = []string{DirImg, DirControl1, DirControl2}
)

var (
	ErrDatasetNotFound   = errors.New("dataset not found")
	ErrImageDirNotFound  = errors.New("image directory not found")
	ErrNoImages          = errors.New("no images found")
	ErrInvalidName       = errors.New("invalid dataset name")
	ErrInvalidPath       = errors.New("invalid dataset path")
	ErrInvalidFilename   = errors.New("invalid filename")
	ErrInvalidFolder     = errors.New("invalid image type")
	ErrDatasetExists     = errors.New("dataset already exists")
	ErrSameDataset       = errors.New("source and target datasets are the same")
	ErrNoFilesToDelete   = errors.New("no files found to delete")
	ErrNoFilesToTransfer = errors.New("no files found to transfer")
	ErrFileNotFound      = errors.New("file not found")
	ErrDatasetLocked     = errors.New("dataset is locked by another operation")
	ErrAllFilesFailed    = errors.New("no file of the operation succeeded")
)

// Dataset is a directory holding the img/Control1..3 folders.
type Dataset struct {
	// Name is the last path element.
	Name string `json:"name"`
	// Path is slash separated and relative to the datasets root.
	Path string `json:"path"`
	// Dir is the absolute directory on disk.
	Dir string `json:"-"`
}

func (d *Dataset) FolderDir(folder string) string {
	return filepath.Join(d.Dir, folder)
}

func (d *Dataset) FilePath(folder, filename string) string {
	return filepath.Join(d.Dir, folder, filename)
}

func (d *Dataset) CaptionPath(basename string) string {
	return filepath.Join(d.Dir, DirImg, basename+CaptionExt)
}

func (d *Dataset) HasControl3() bool {
	return utils.DirExists(d.FolderDir(DirControl3))
}

func (d *Dataset) lockPath() string {
	return filepath.Join(d.Dir, lockFileName)
}

// IsImageFile reports whether name carries a recognized image extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExts {
		if e == ext {
			return true
		}
	}
	return false
}

// Stem strips the final extension from a filename.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IsFolder reports whether name is one of the four recognized folders.
func IsFolder(name string) bool {
	for _, f := range Folders {
		if f == name {
			return true
		}
	}
	return false
}

// relPath renders a dataset-relative file path the way results report it.
func relPath(folder, filename string) string {
	return folder + "/" + filename
}
