package dataset

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/openmined/dsmanager/internal/server/handlers/api"
)

// The multi-file operations below hand back their result together with an
// error when nothing succeeded; that result is still written as the body.

func (h *DatasetHandler) Delete(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	var q DeleteQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	res, err := h.svc.Delete(ctx.Request.Context(), ds.Path, ctx.Param("filename"), q.LinkedFolder)
	if res != nil && err != nil {
		status, fields := resultError(ctx, err)
		ctx.PureJSON(status, &DeleteResponse{DeleteResult: res, ErrorFields: fields})
		return
	} else if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(partialStatus(res.Errors), &DeleteResponse{DeleteResult: res})
}

func (h *DatasetHandler) Transfer(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	var req TransferRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := h.svc.Transfer(ctx.Request.Context(), dataset.TransferParams{
		Source:   ds.Path,
		Target:   req.TargetFolder,
		Linked:   req.LinkedFolder,
		Filename: ctx.Param("filename"),
	})
	if res != nil && err != nil {
		status, fields := resultError(ctx, err)
		ctx.PureJSON(status, &TransferResponse{TransferResult: res, ErrorFields: fields})
		return
	} else if err != nil {
		abortWithError(ctx, err)
		return
	}

	status := partialStatus(res.Primary.Errors)
	if res.Linked != nil && len(res.Linked.Errors) > 0 {
		// any linked leg problem is reported, absence included
		status = http.StatusMultiStatus
	}
	ctx.PureJSON(status, &TransferResponse{TransferResult: res})
}

func (h *DatasetHandler) Reshuffle(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	res, err := h.svc.Reshuffle(ctx.Request.Context(), ds.Path)
	if res != nil && err != nil {
		status, fields := resultError(ctx, err)
		ctx.PureJSON(status, &ReshuffleResponse{ReshuffleResult: res, ErrorFields: fields})
		return
	} else if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(partialStatus(res.Errors), &ReshuffleResponse{ReshuffleResult: res})
}

func (h *DatasetHandler) Compress(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	res, err := h.svc.Compress(ctx.Request.Context(), ds.Path)
	if res != nil && err != nil {
		status, fields := resultError(ctx, err)
		ctx.PureJSON(status, &CompressResponse{CompressResult: res, ErrorFields: fields})
		return
	} else if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(partialStatus(res.Errors), &CompressResponse{CompressResult: res})
}

func (h *DatasetHandler) Export(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	var req ExportRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := h.svc.Export(ctx.Request.Context(), ds.Path, req.ExportPath)
	if res != nil && err != nil {
		status, fields := resultError(ctx, err)
		ctx.PureJSON(status, &ExportResponse{ExportResult: res, ErrorFields: fields})
		return
	} else if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(partialStatus(res.Errors), &ExportResponse{ExportResult: res})
}
