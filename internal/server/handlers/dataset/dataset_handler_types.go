package dataset

import (
	"errors"

	"github.com/openmined/dsmanager/internal/dataset"
)

var (
	errFolderRequired = errors.New("folder is required")
	errFileRequired   = errors.New("multipart field 'file' is required")
)

type FolderQuery struct {
	Folder string `form:"folder" binding:"required"`
}

type DeleteQuery struct {
	LinkedFolder string `form:"linkedFolder"`
}

type FoldersResponse struct {
	Folders []*dataset.Dataset `json:"folders"`
}

type CreateDatasetRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateDatasetResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Path    string `json:"path"`
}

type ImagesResponse struct {
	Folder string   `json:"folder"`
	Images []string `json:"images"`
}

type CaptionRequest struct {
	Caption string `json:"caption"`
}

type CaptionResponse struct {
	Caption string `json:"caption"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type SaveResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// ErrorFields sit next to an itemized result when the operation failed as a whole.
type ErrorFields struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

type DeleteResponse struct {
	*dataset.DeleteResult
	ErrorFields
}

type TransferRequest struct {
	TargetFolder string `json:"targetFolder" binding:"required"`
	LinkedFolder string `json:"linkedFolder"`
}

type TransferResponse struct {
	*dataset.TransferResult
	ErrorFields
}

type ReshuffleResponse struct {
	*dataset.ReshuffleResult
	ErrorFields
}

type CompareRequest struct {
	PrimaryFolder string `json:"primaryFolder" binding:"required"`
	LinkedFolder  string `json:"linkedFolder" binding:"required"`
}

type CompressResponse struct {
	*dataset.CompressResult
	ErrorFields
}

type ExportRequest struct {
	ExportPath string `json:"exportPath" binding:"required"`
}

type ExportResponse struct {
	*dataset.ExportResult
	ErrorFields
}
