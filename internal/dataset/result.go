package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

// FileOp names the filesystem action a FileError belongs to.
type FileOp string

const (
	OpDelete FileOp = "delete"
	OpRename FileOp = "rename"
	OpRevert FileOp = "revert"
	OpMove   FileOp = "move"
	OpMkdir  FileOp = "create"
	OpCopy   FileOp = "copy"
	OpEncode FileOp = "compress"
	OpRead   FileOp = "read"
)

// FileError is the outcome of one failed or skipped file in a multi-file operation.
type FileError struct {
	Path string
	Op   FileOp
	Err  error
}

func notFound(path string) *FileError {
	return &FileError{Path: path, Op: OpRead, Err: fs.ErrNotExist}
}

func (e *FileError) Error() string {
	if e.NotFound() {
		return e.Path + " not found"
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the file was absent rather than failing.
func (e *FileError) NotFound() bool {
	return errors.Is(e.Err, fs.ErrNotExist) && e.Op == OpRead
}

func (e *FileError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path    string `json:"path"`
		Op      FileOp `json:"op"`
		Message string `json:"error"`
	}{
		Path:    e.Path,
		Op:      e.Op,
		Message: e.Error(),
	})
}

// allFailed wraps ErrAllFilesFailed with the first failure in errs. It is nil
// when errs only holds absent files.
func allFailed(errs []*FileError) error {
	for _, e := range errs {
		if !e.NotFound() {
			return fmt.Errorf("%w: %s", ErrAllFilesFailed, e)
		}
	}
	return nil
}

// MovedFile is one physical relocation performed by a transfer.
type MovedFile struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ReshuffleResult struct {
	Success      bool              `json:"success"`
	Count        int               `json:"count"`
	FilesRenamed int               `json:"files_renamed"`
	Renames      map[string]string `json:"renames"`
	Errors       []*FileError      `json:"errors,omitempty"`
}

type DeleteResult struct {
	Success bool         `json:"success"`
	Deleted []string     `json:"deleted"`
	Errors  []*FileError `json:"errors"`
}

type TransferLeg struct {
	Source      string       `json:"source"`
	Filename    string       `json:"filename"`
	NewFilename string       `json:"newFilename,omitempty"`
	Moved       []MovedFile  `json:"moved"`
	Errors      []*FileError `json:"errors,omitempty"`
}

type TransferResult struct {
	Success bool         `json:"success"`
	Target  string       `json:"target"`
	Primary *TransferLeg `json:"transferred"`
	Linked  *TransferLeg `json:"linked,omitempty"`
}

type CompareResult struct {
	Orphans []string `json:"orphans"`
	Missing []string `json:"missing"`
}

type CompressResult struct {
	Success        bool         `json:"success"`
	Compressed     int          `json:"compressed"`
	Scanned        int          `json:"scanned"`
	OriginalBytes  int64        `json:"originalBytes"`
	NewBytes       int64        `json:"newBytes"`
	OriginalSizeMB float64      `json:"originalSizeMB"`
	NewSizeMB      float64      `json:"newSizeMB"`
	SavingsMB      float64      `json:"savingsMB"`
	SavingsPercent float64      `json:"savingsPercent"`
	Errors         []*FileError `json:"errors,omitempty"`
}

type ExportedFolder struct {
	Files int    `json:"files"`
	Path  string `json:"path"`
}

type ExportResult struct {
	Success    bool                       `json:"success"`
	ExportPath string                     `json:"exportPath"`
	Exported   map[string]*ExportedFolder `json:"exported"`
	Errors     []*FileError               `json:"errors,omitempty"`
}
