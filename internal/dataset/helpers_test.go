package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ...Option) (*DatasetService, string) {
	t.Helper()

	root := t.TempDir()
	opts = append([]Option{
		WithNameGenerator(NewSeededNameGenerator(42, 1337)),
		WithLockManager(NewLockManager(true, 200*time.Millisecond)),
		WithWorkers(2),
	}, opts...)

	svc, err := NewDatasetService(root, opts...)
	require.NoError(t, err)
	return svc, root
}

// makeDataset creates the standard folders (Control3 only when withControl3)
// and writes files keyed by their dataset-relative path.
func makeDataset(t *testing.T, root, name string, withControl3 bool, files map[string]string) string {
	t.Helper()

	dir := filepath.Join(root, filepath.FromSlash(name))
	folders := []string{DirImg, DirControl1, DirControl2}
	if withControl3 {
		folders = append(folders, DirControl3)
	}
	for _, f := range folders {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, f), 0o755))
	}
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// snapshot maps folder/filename to content for every file in the dataset folders.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()

	out := make(map[string]string)
	for _, folder := range Folders {
		entries, err := os.ReadDir(filepath.Join(dir, folder))
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, folder, e.Name()))
			require.NoError(t, err)
			out[folder+"/"+e.Name()] = string(data)
		}
	}
	return out
}

// contentByFolder drops file names, keeping what must survive a rename.
func contentByFolder(files map[string]string) map[string]int {
	out := make(map[string]int)
	for rel, content := range files {
		out[filepath.Dir(rel)+"|"+filepath.Ext(rel)+"|"+content]++
	}
	return out
}

func errorStrings(errs []*FileError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func removeAll(path string) error {
	return os.RemoveAll(filepath.FromSlash(path))
}
