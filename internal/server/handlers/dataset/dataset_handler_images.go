package dataset

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmined/dsmanager/internal/server/handlers/api"
)

func (h *DatasetHandler) ListImages(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	images, err := h.images.Images(ctx.Request.Context(), ds)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &ImagesResponse{
		Folder: ds.Path,
		Images: images,
	})
}

// GetImage serves /api/image/:type/:filename where type is img or Control1..3.
func (h *DatasetHandler) GetImage(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	path, err := h.svc.ImagePath(ds, ctx.Param("type"), ctx.Param("filename"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	// names are recycled by reshuffle and transfer
	ctx.Header("Cache-Control", "no-store")
	ctx.File(path)
}

func (h *DatasetHandler) GetCaption(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	caption, err := h.svc.Caption(ds, ctx.Param("filename"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &CaptionResponse{Caption: caption})
}

func (h *DatasetHandler) SetCaption(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	var req CaptionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := h.svc.SetCaption(ctx.Request.Context(), ds, ctx.Param("filename"), req.Caption); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &SuccessResponse{Success: true})
}

// SaveImage replaces an img file with the multipart field "file", as sent by
// the image editor.
func (h *DatasetHandler) SaveImage(ctx *gin.Context) {
	ds, ok := h.resolve(ctx)
	if !ok {
		return
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, errFileRequired)
		return
	}

	file, err := fh.Open()
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	filename := ctx.Param("filename")
	n, err := h.svc.SaveImage(ctx.Request.Context(), ds, filename, file)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &SaveResponse{
		Success:  true,
		Filename: filename,
		Size:     n,
	})
}
