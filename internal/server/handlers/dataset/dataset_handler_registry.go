package dataset

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *DatasetHandler) ListFolders(ctx *gin.Context) {
	datasets, err := h.svc.ListDatasets()
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &FoldersResponse{
		Folders: datasets,
	})
}

func (h *DatasetHandler) CreateDataset(ctx *gin.Context) {
	var req CreateDatasetRequest
	if !bindJSON(ctx, &req) {
		return
	}

	ds, err := h.svc.CreateDataset(req.Name)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &CreateDatasetResponse{
		Success: true,
		Name:    ds.Name,
		Path:    ds.Path,
	})
}

func (h *DatasetHandler) CompareDatasets(ctx *gin.Context) {
	var req CompareRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := h.svc.Compare(req.PrimaryFolder, req.LinkedFolder)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, res)
}
