package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
)

var ErrDestinationExists = errors.New("destination already exists")

// CopyFile copies a file from src to dst, creating the parent of dst.
func CopyFile(src, dst string) error {
	if err := EnsureParent(dst); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// MoveFile relocates src to dst without overwriting an existing dst.
// A rename across filesystems falls back to copy and remove.
func MoveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return ErrDestinationExists
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := CopyFile(src, dst); err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}
	return os.Remove(src)
}

// RenameNoReplace renames src to dst unless dst already exists.
func RenameNoReplace(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return ErrDestinationExists
	}
	return os.Rename(src, dst)
}

const tempSuffix = ".tmp"

// IsTempFile reports whether name is an in-flight WriteFileAtomic temp file.
func IsTempFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, tempSuffix)
}

// WriteFileAtomic streams r into a temp file next to path and renames it into place.
func WriteFileAtomic(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return 0, err
	}

	tmpPath := filepath.Join(dir, "."+uuid.New().String()+tempSuffix)
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return n, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return n, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return n, err
	}
	return n, nil
}
