// Package service provides business-logic for the app
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/UnendingLoop/ImageTuner/internal/config"
	"github.com/UnendingLoop/ImageTuner/internal/imageproc"
	"github.com/UnendingLoop/ImageTuner/internal/model"
	"github.com/UnendingLoop/ImageTuner/internal/mwlogger"
	"github.com/UnendingLoop/ImageTuner/internal/storage"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"
)

type ImageService struct {
	incoming storage.FileStorage
	derived  storage.FileStorage
	proc     config.ProcessingConfig
	maxSize  int64
}

func NewImageService(cfg *config.Config, incoming, derived storage.FileStorage) *ImageService {
	return &ImageService{
		incoming: incoming,
		derived:  derived,
		proc:     cfg.Processing,
		maxSize:  cfg.Limits.MaxUploadSize,
	}
}

// Upload - кладет исходник во входящее хранилище под новым UUID.
// Байты не проверяются на валидность картинки: битый файл всплывет в Process.
func (s *ImageService) Upload(ctx context.Context, data *model.UploadData) (*model.UploadResult, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if data == nil || data.File == nil || data.Size <= 0 {
		return nil, model.ErrMissingFile
	}
	if s.maxSize > 0 && data.Size > s.maxSize {
		return nil, model.ErrTooLarge
	}

	id := uuid.New().String()
	if err := s.incoming.Put(ctx, id, data.Size, data.ContentType, data.File); err != nil {
		logger.Error().Err(err).Msg("Failed to save src-image in Storage")
		return nil, model.ErrCommon500
	}

	return &model.UploadResult{Filename: id}, nil
}

// Process - синхронно прогоняет исходник через движок и пишет три производных
// файла: превью-JPEG, полноразмерные PNG и JPEG. Ключи детерминированы от id
// исходника, так что повторный вызов перезатирает прошлый набор целиком.
// Конкурентные вызовы по одному id не сериализуются - побеждает последняя запись.
func (s *ImageService) Process(ctx context.Context, req *model.TransformRequest) (*model.ProcessResult, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	// форма идентификатора проверяется до любого I/O
	if err := storage.ValidateKey(req.Filename); err != nil {
		return nil, model.ErrInvalidIdentifier
	}

	src, _, err := s.incoming.Get(ctx, req.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, model.ErrSourceNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch source image %q from Storage", req.Filename))
		return nil, model.ErrCommon500
	}
	defer closeFileFlow(src)

	decoded, err := imageproc.Decode(src)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to decode source image %q", req.Filename))
		return nil, model.ErrProcessingFailure
	}

	full := imageproc.Apply(decoded, normalizeParams(req))
	preview := imageproc.FitPreview(full, s.proc.PreviewBound)

	// кодируем три выхода параллельно и только в буферы: если хоть один упал -
	// в хранилище не попадает ничего
	outputs := []*derivedOutput{
		{key: model.PreviewName(req.Filename), cType: model.JPEG},
		{key: model.ProcessedPNGName(req.Filename), cType: model.PNG},
		{key: model.ProcessedJPEGName(req.Filename), cType: model.JPEG},
	}

	var encodeGroup errgroup.Group
	encodeGroup.Go(func() error {
		var err error
		outputs[0].data, outputs[0].size, err = imageproc.EncodeJPEG(preview, s.proc.PreviewQuality)
		return err
	})
	encodeGroup.Go(func() error {
		var err error
		outputs[1].data, outputs[1].size, err = imageproc.EncodePNG(full)
		return err
	})
	encodeGroup.Go(func() error {
		var err error
		outputs[2].data, outputs[2].size, err = imageproc.EncodeJPEG(full, s.proc.FullQuality)
		return err
	})
	if err := encodeGroup.Wait(); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to encode derived images for %q", req.Filename))
		return nil, model.ErrProcessingFailure
	}

	var putGroup errgroup.Group
	for _, out := range outputs {
		out := out
		putGroup.Go(func() error {
			return s.derived.Put(ctx, out.key, out.size, out.cType, out.data)
		})
	}
	if err := putGroup.Wait(); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to save derived images for %q in Storage", req.Filename))
		return nil, model.ErrProcessingFailure
	}

	return &model.ProcessResult{
		PreviewFilename: outputs[0].key,
		PNGFilename:     outputs[1].key,
		JPEGFilename:    outputs[2].key,
	}, nil
}

// Download - отдает производный файл по имени из производного хранилища
func (s *ImageService) Download(ctx context.Context, name string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := storage.ValidateKey(name); err != nil {
		return nil, "", model.ErrInvalidIdentifier
	}

	exists, err := s.derived.Exists(ctx, name)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to check derived image %q in Storage", name))
		return nil, "", model.ErrCommon500
	}
	if !exists {
		return nil, "", model.ErrAssetNotFound
	}

	data, cType, err := s.derived.Get(ctx, name)
	if err != nil {
		// файл мог исчезнуть между Exists и Get - например его забрал свипер
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", model.ErrAssetNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch derived image %q from Storage", name))
		return nil, "", model.ErrCommon500
	}
	return data, cType, nil
}

type derivedOutput struct {
	key   string
	cType string
	data  io.Reader
	size  int64
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Service failed to close fileflow")
	}
}
