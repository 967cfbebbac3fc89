package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src.bin")
	dst := filepath.Join(root, "nested", "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.FileExists(t, src)
}

func TestMoveFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.png")
	dst := filepath.Join(root, "b.png")
	require.NoError(t, os.WriteFile(src, []byte("img"), 0o644))

	require.NoError(t, MoveFile(src, dst))
	assert.NoFileExists(t, src)
	assert.FileExists(t, dst)
}

func TestMoveFile_DoesNotOverwrite(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.png")
	dst := filepath.Join(root, "b.png")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	err := MoveFile(src, dst)
	assert.ErrorIs(t, err, ErrDestinationExists)

	data, _ := os.ReadFile(dst)
	assert.Equal(t, "old", string(data))
	assert.FileExists(t, src)
}

func TestRenameNoReplace(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.png")
	dst := filepath.Join(root, "b.png")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	require.NoError(t, RenameNoReplace(src, dst))
	require.NoError(t, os.WriteFile(src, []byte("a2"), 0o644))
	assert.ErrorIs(t, RenameNoReplace(src, dst), ErrDestinationExists)
}

func TestWriteFileAtomic(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "img", "x.png")

	n, err := WriteFileAtomic(path, bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	_, err = WriteFileAtomic(path, bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLogInterceptor(t *testing.T) {
	var out bytes.Buffer
	li := NewLogInterceptor(&out)

	_, err := li.Write([]byte("hello\nwor"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "line=1")
	assert.Contains(t, out.String(), "hello")
	assert.NotContains(t, out.String(), "wor")

	_, err = li.Write([]byte("ld\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "line=2")
	assert.Contains(t, out.String(), "world")

	_, _ = li.Write([]byte("tail"))
	require.NoError(t, li.Close())
	assert.Contains(t, out.String(), "tail")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "*****", MaskSecret("abc"))
	assert.Equal(t, "abcd*****", MaskSecret("abcdefgh"))
}

func TestIsTempFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".3f2c9a.tmp", true},
		{".a.png", false},
		{"a.tmp", false},
		{"a.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTempFile(tt.name))
		})
	}

	path := filepath.Join(t.TempDir(), "a.txt")
	_, err := WriteFileAtomic(path, bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, IsTempFile(e.Name()), e.Name())
	}
}
