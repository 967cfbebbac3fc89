package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/openmined/dsmanager/internal/utils"
)

// FileSet maps a folder name to the extensions present for one basename.
// Folders without a file are absent, never empty.
type FileSet map[string][]string

// FileRef is a single (folder, extension) pair of a sample.
type FileRef struct {
	Folder string
	Ext    string
}

// Files lists the pairs in folder scan order.
func (s FileSet) Files() []FileRef {
	refs := make([]FileRef, 0, len(s))
	for _, folder := range Folders {
		for _, ext := range s[folder] {
			refs = append(refs, FileRef{Folder: folder, Ext: ext})
		}
	}
	return refs
}

func (s FileSet) Count() int {
	n := 0
	for _, exts := range s {
		n += len(exts)
	}
	return n
}

// Index maps each sample basename to the files it owns.
type Index map[string]FileSet

func (idx Index) Basenames() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (idx Index) FileCount() int {
	n := 0
	for _, set := range idx {
		n += set.Count()
	}
	return n
}

// BuildIndex scans the dataset once per folder. The samples are the stems of
// the image files in img; the other folders only contribute files whose stem
// belongs to one of those samples. Nothing is modified.
func BuildIndex(ds *Dataset) (Index, error) {
	imgEntries, err := readFiles(ds.FolderDir(DirImg))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrImageDirNotFound
	} else if err != nil {
		return nil, fmt.Errorf("read image directory: %w", err)
	}

	idx := make(Index)
	for _, name := range imgEntries {
		if IsImageFile(name) {
			idx[Stem(name)] = make(FileSet)
		}
	}
	if len(idx) == 0 {
		return nil, ErrNoImages
	}

	for _, folder := range Folders {
		var names []string
		if folder == DirImg {
			names = imgEntries
		} else {
			names, err = readFiles(ds.FolderDir(folder))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			} else if err != nil {
				return nil, fmt.Errorf("read %s: %w", folder, err)
			}
		}

		for _, name := range names {
			set, ok := idx[Stem(name)]
			if !ok || !recognizedIn(folder, name) {
				continue
			}
			set[folder] = append(set[folder], filepath.Ext(name))
		}
	}

	for _, set := range idx {
		for folder := range set {
			slices.Sort(set[folder])
		}
	}

	return idx, nil
}

// recognizedIn reports whether name is tracked inside folder. Captions only
// live in img.
func recognizedIn(folder, name string) bool {
	if IsImageFile(name) {
		return true
	}
	return folder == DirImg && strings.EqualFold(filepath.Ext(name), CaptionExt)
}

// readFiles lists the file names of dir, dot-files included. Temp files of
// atomic writes and names without a stem are left out.
func readFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || utils.IsTempFile(name) || Stem(name) == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// existingStems collects the stems of every file in the dataset's folders.
// Fresh identifiers are drawn outside this set so a rename or move never lands
// on an unrelated file.
func existingStems(ds *Dataset) (mapset.Set[string], error) {
	stems := mapset.NewThreadUnsafeSet[string]()
	for _, folder := range Folders {
		names, err := readFiles(ds.FolderDir(folder))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("read %s: %w", folder, err)
		}
		for _, name := range names {
			stems.Add(Stem(name))
		}
	}
	return stems, nil
}

// sampleImages returns the image files in dir whose stem is basename.
func sampleImages(dir, basename string) ([]string, error) {
	names, err := readFiles(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, name := range names {
		if Stem(name) == basename && IsImageFile(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}
