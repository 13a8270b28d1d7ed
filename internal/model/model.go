// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"mime/multipart"
)

// TransformRequest - параметры обработки, приходят в JSON от клиента.
// Числовые поля - указатели: отсутствующее поле получает дефолт в сервисе,
// присутствующее валидируется по диапазону.
type TransformRequest struct {
	Filename   string   `json:"filename" binding:"required"`
	Brightness *float64 `json:"brightness" binding:"omitempty,gte=0,lte=2"`
	Contrast   *float64 `json:"contrast" binding:"omitempty,gte=0,lte=2"`
	Saturation *float64 `json:"saturation" binding:"omitempty,gte=0,lte=2"`
	Rotation   *float64 `json:"rotation" binding:"omitempty,gte=0,lte=360"`
	Format     string   `json:"format" binding:"omitempty,oneof=jpeg png"`
}

// UploadData - распарсенный multipart-аплоад
type UploadData struct {
	File        multipart.File
	Size        int64
	ContentType string
}

type UploadResult struct {
	Filename string `json:"filename"`
}

// ProcessResult - три производных файла одного вызова /process
type ProcessResult struct {
	PreviewFilename string `json:"previewFilename"`
	PNGFilename     string `json:"pngFilename"`
	JPEGFilename    string `json:"jpegFilename"`
}

//--------------------

// Имена производных файлов восстановимы из {id исходника, роль}:
// повторная обработка пишет по тем же ключам и перезатирает прошлый результат.

func PreviewName(id string) string { return id + "_preview.jpg" }

func ProcessedPNGName(id string) string { return id + "_processed.png" }

func ProcessedJPEGName(id string) string { return id + "_processed.jpg" }

//--------------------

var (
	ErrCommon500         error = errors.New("something went wrong. Try again later") // 500
	ErrMissingFile       error = errors.New("no file uploaded")                      // 400
	ErrInvalidParameter  error = errors.New("invalid transform parameters")          // 400
	ErrTooLarge          error = errors.New("uploaded file is too large")            // 400
	ErrSourceNotFound    error = errors.New("source image doesn't exist")            // 404
	ErrProcessingFailure error = errors.New("failed to process image")               // 500
	ErrInvalidIdentifier error = errors.New("invalid file identifier")               // 404
	ErrAssetNotFound     error = errors.New("File not found")                        // 404
	ErrRateLimited       error = errors.New("too many requests")                     // 429
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
)
