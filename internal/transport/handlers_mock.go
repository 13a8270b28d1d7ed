package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/ImageTuner/internal/model"
	"github.com/gin-gonic/gin"
)

type mockImageService struct {
	uploadFn   func(ctx context.Context, data *model.UploadData) (*model.UploadResult, error)
	processFn  func(ctx context.Context, req *model.TransformRequest) (*model.ProcessResult, error)
	downloadFn func(ctx context.Context, name string) (io.ReadCloser, string, error)
}

func (m *mockImageService) Upload(ctx context.Context, data *model.UploadData) (*model.UploadResult, error) {
	return m.uploadFn(ctx, data)
}

func (m *mockImageService) Process(ctx context.Context, req *model.TransformRequest) (*model.ProcessResult, error) {
	return m.processFn(ctx, req)
}

func (m *mockImageService) Download(ctx context.Context, name string) (io.ReadCloser, string, error) {
	return m.downloadFn(ctx, name)
}

func init() {
	gin.SetMode(gin.TestMode)
}
