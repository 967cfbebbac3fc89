package dataset

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/openmined/dsmanager/internal/server/handlers/api"
)

// ImageLister serves the image listing of a dataset, usually from the catalog.
type ImageLister interface {
	Images(ctx context.Context, ds *dataset.Dataset) ([]string, error)
}

// Service is the dataset work the handlers delegate to.
type Service interface {
	Resolve(rel string) (*dataset.Dataset, error)
	ListDatasets() ([]*dataset.Dataset, error)
	CreateDataset(name string) (*dataset.Dataset, error)
	Compare(primaryRel, linkedRel string) (*dataset.CompareResult, error)
	ImagePath(ds *dataset.Dataset, folder, filename string) (string, error)
	Caption(ds *dataset.Dataset, filename string) (string, error)
	SetCaption(ctx context.Context, ds *dataset.Dataset, filename, caption string) error
	SaveImage(ctx context.Context, ds *dataset.Dataset, filename string, r io.Reader) (int64, error)
	Delete(ctx context.Context, rel, filename, linkedRel string) (*dataset.DeleteResult, error)
	Transfer(ctx context.Context, p dataset.TransferParams) (*dataset.TransferResult, error)
	Reshuffle(ctx context.Context, rel string) (*dataset.ReshuffleResult, error)
	Compress(ctx context.Context, rel string) (*dataset.CompressResult, error)
	Export(ctx context.Context, rel, dest string) (*dataset.ExportResult, error)
}

type fsLister struct{}

func (fsLister) Images(_ context.Context, ds *dataset.Dataset) ([]string, error) {
	return dataset.ListImages(ds)
}

type DatasetHandler struct {
	svc    Service
	images ImageLister
}

// New builds the handler. A nil lister reads the img folder on every request.
func New(svc Service, images ImageLister) *DatasetHandler {
	if images == nil {
		images = fsLister{}
	}
	return &DatasetHandler{svc: svc, images: images}
}

// resolve binds the folder query and resolves it, writing the error response
// when it fails.
func (h *DatasetHandler) resolve(ctx *gin.Context) (*dataset.Dataset, bool) {
	var q FolderQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, errFolderRequired)
		return nil, false
	}
	ds, err := h.svc.Resolve(q.Folder)
	if err != nil {
		abortWithError(ctx, err)
		return nil, false
	}
	return ds, true
}

func bindJSON(ctx *gin.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return false
	}
	return true
}

// errorStatus maps service errors onto an http status and api code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, dataset.ErrDatasetNotFound):
		return http.StatusNotFound, api.CodeDatasetNotFound
	case errors.Is(err, dataset.ErrImageDirNotFound),
		errors.Is(err, dataset.ErrNoImages),
		errors.Is(err, dataset.ErrFileNotFound),
		errors.Is(err, dataset.ErrNoFilesToDelete),
		errors.Is(err, dataset.ErrNoFilesToTransfer):
		return http.StatusNotFound, api.CodeFileNotFound
	case errors.Is(err, dataset.ErrAllFilesFailed):
		return http.StatusInternalServerError, api.CodeOperationFailed
	case errors.Is(err, dataset.ErrInvalidName),
		errors.Is(err, dataset.ErrInvalidPath),
		errors.Is(err, dataset.ErrInvalidFilename),
		errors.Is(err, dataset.ErrInvalidFolder),
		errors.Is(err, dataset.ErrSameDataset):
		return http.StatusBadRequest, api.CodeInvalidRequest
	case errors.Is(err, dataset.ErrNoUploader):
		return http.StatusBadRequest, api.CodeExportUnavailable
	case errors.Is(err, dataset.ErrDatasetExists):
		return http.StatusConflict, api.CodeDatasetExists
	case errors.Is(err, dataset.ErrDatasetLocked):
		return http.StatusConflict, api.CodeDatasetLocked
	default:
		return http.StatusInternalServerError, api.CodeInternalError
	}
}

func abortWithError(ctx *gin.Context, err error) {
	status, code := errorStatus(err)
	api.AbortWithError(ctx, status, code, err)
}

// resultError maps err for a response that still carries the itemized result.
func resultError(ctx *gin.Context, err error) (int, ErrorFields) {
	status, code := errorStatus(err)
	ctx.Error(err)
	return status, ErrorFields{Code: code, Error: err.Error()}
}

// partialStatus is 207 when any file failed for a reason other than being absent.
func partialStatus(errs ...[]*dataset.FileError) int {
	for _, list := range errs {
		for _, e := range list {
			if !e.NotFound() {
				return http.StatusMultiStatus
			}
		}
	}
	return http.StatusOK
}
