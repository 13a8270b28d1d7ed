// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/UnendingLoop/ImageTuner/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
)

type ImageHandler struct {
	service ImageService
}

type ImageService interface {
	Upload(ctx context.Context, data *model.UploadData) (*model.UploadResult, error)
	Process(ctx context.Context, req *model.TransformRequest) (*model.ProcessResult, error)
	Download(ctx context.Context, name string) (io.ReadCloser, string, error)
}

func NewImageHandler(svc ImageService) *ImageHandler {
	return &ImageHandler{
		service: svc,
	}
}

func (h ImageHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h ImageHandler) Upload(ctx *ginext.Context) {
	// парсинг исходника
	imageFile, imageHeader, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrMissingFile.Error()})
		return
	}
	defer closeFileFlow(imageFile)

	data := model.UploadData{
		File:        imageFile,
		Size:        imageHeader.Size,
		ContentType: imageHeader.Header.Get("Content-Type"),
	}

	res, err := h.service.Upload(ctx.Request.Context(), &data)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h ImageHandler) Process(ctx *ginext.Context) {
	var req model.TransformRequest

	// схема валидируется целиком: в ответе все нарушенные поля, не первое
	if err := ctx.ShouldBindJSON(&req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			ctx.JSON(400, map[string][]string{"errors": validationMessages(vErrs)})
			return
		}
		ctx.JSON(400, map[string][]string{"errors": {"invalid request body"}})
		return
	}

	res, err := h.service.Process(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h ImageHandler) Download(ctx *ginext.Context) {
	name := ctx.Param("filename")

	res, cType, err := h.service.Download(ctx.Request.Context(), name)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer closeFileFlow(res)

	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		log.Printf("Failed to write response at byte %d for file %q: %v", n, name, err)
	}
}
