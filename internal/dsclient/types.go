package dsclient

import "github.com/openmined/dsmanager/internal/dataset"

type Dataset = dataset.Dataset
type CompareResult = dataset.CompareResult
type MovedFile = dataset.MovedFile
type ExportedFolder = dataset.ExportedFolder

// FileError is one failed or missing file as reported by the server.
type FileError struct {
	Path    string `json:"path"`
	Op      string `json:"op"`
	Message string `json:"error"`
}

func (e *FileError) Error() string { return e.Message }

type foldersResponse struct {
	Folders []*Dataset `json:"folders"`
}

type createDatasetRequest struct {
	Name string `json:"name"`
}

type imagesResponse struct {
	Images []string `json:"images"`
}

type captionBody struct {
	Caption string `json:"caption"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type transferRequest struct {
	TargetFolder string `json:"targetFolder"`
	LinkedFolder string `json:"linkedFolder,omitempty"`
}

type compareRequest struct {
	PrimaryFolder string `json:"primaryFolder"`
	LinkedFolder  string `json:"linkedFolder"`
}

type exportRequest struct {
	ExportPath string `json:"exportPath"`
}

type DeleteResult struct {
	Success bool         `json:"success"`
	Deleted []string     `json:"deleted"`
	Errors  []*FileError `json:"errors"`
}

type TransferLeg struct {
	Source      string       `json:"source"`
	Filename    string       `json:"filename"`
	NewFilename string       `json:"newFilename"`
	Moved       []MovedFile  `json:"moved"`
	Errors      []*FileError `json:"errors"`
}

type TransferResult struct {
	Success bool         `json:"success"`
	Target  string       `json:"target"`
	Primary *TransferLeg `json:"transferred"`
	Linked  *TransferLeg `json:"linked"`
}

type ReshuffleResult struct {
	Success      bool              `json:"success"`
	Count        int               `json:"count"`
	FilesRenamed int               `json:"files_renamed"`
	Renames      map[string]string `json:"renames"`
	Errors       []*FileError      `json:"errors"`
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
	Errors         []*FileError `json:"errors"`
}

type ExportResult struct {
	Success    bool                       `json:"success"`
	ExportPath string                     `json:"exportPath"`
	Exported   map[string]*ExportedFolder `json:"exported"`
	Errors     []*FileError               `json:"errors"`
}
