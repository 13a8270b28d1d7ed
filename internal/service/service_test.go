package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"testing"

	"github.com/UnendingLoop/ImageTuner/internal/config"
	"github.com/UnendingLoop/ImageTuner/internal/model"
	"github.com/UnendingLoop/ImageTuner/internal/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// UPLOAD - SUCCESS
func TestImageService_Upload_OK(t *testing.T) {
	incoming := &mockStorage{}

	svc := ImageService{incoming: incoming, maxSize: 1 << 20}

	res, err := svc.Upload(context.Background(), &model.UploadData{
		File:        newFakeFile("image-bytes"),
		Size:        int64(len("image-bytes")),
		ContentType: model.JPEG,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	// идентификатор - валидный UUID, и исходник лег именно под ним
	_, err = uuid.Parse(res.Filename)
	require.NoError(t, err)
	require.Equal(t, []string{res.Filename}, incoming.storedKeys())
}

// UPLOAD - NO FILE
func TestImageService_Upload_MissingFile(t *testing.T) {
	svc := ImageService{}

	_, err := svc.Upload(context.Background(), nil)
	require.ErrorIs(t, err, model.ErrMissingFile)

	_, err = svc.Upload(context.Background(), &model.UploadData{File: newFakeFile(""), Size: 0})
	require.ErrorIs(t, err, model.ErrMissingFile)
}

// UPLOAD - FILE OVER LIMIT
func TestImageService_Upload_TooLarge(t *testing.T) {
	svc := ImageService{maxSize: 4}

	_, err := svc.Upload(context.Background(), &model.UploadData{
		File: newFakeFile("image-bytes"),
		Size: int64(len("image-bytes")),
	})
	require.ErrorIs(t, err, model.ErrTooLarge)
}

// UPLOAD - STORAGE PUT FAIL
func TestImageService_Upload_StorageError(t *testing.T) {
	incoming := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			return errors.New("storage is down")
		},
	}

	svc := ImageService{incoming: incoming}

	_, err := svc.Upload(context.Background(), &model.UploadData{
		File: newFakeFile("image-bytes"),
		Size: int64(len("image-bytes")),
	})
	require.ErrorIs(t, err, model.ErrCommon500)
}

// PROCESS - SUCCESS
func TestImageService_Process_OK(t *testing.T) {
	id := uuid.New().String()
	incoming := sourceStorage(t, id)
	derived := &mockStorage{}

	svc := testService(incoming, derived)

	res, err := svc.Process(context.Background(), &model.TransformRequest{Filename: id})
	require.NoError(t, err)

	require.Equal(t, id+"_preview.jpg", res.PreviewFilename)
	require.Equal(t, id+"_processed.png", res.PNGFilename)
	require.Equal(t, id+"_processed.jpg", res.JPEGFilename)

	// в производное хранилище попали ровно три файла
	require.ElementsMatch(t,
		[]string{res.PreviewFilename, res.PNGFilename, res.JPEGFilename},
		derived.storedKeys())
}

// PROCESS - REPEAT OVERWRITES SAME KEYS
func TestImageService_Process_Idempotent(t *testing.T) {
	id := uuid.New().String()
	incoming := sourceStorage(t, id)
	derived := &mockStorage{}

	svc := testService(incoming, derived)

	rotation := 90.0
	req := &model.TransformRequest{Filename: id, Rotation: &rotation}

	first, err := svc.Process(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), req)
	require.NoError(t, err)

	// повторная обработка пишет по тем же ключам - файлов не прибавилось
	require.Equal(t, first, second)
	require.Len(t, derived.storedKeys(), 3)
}

// PROCESS - SOURCE MISSING
func TestImageService_Process_SourceNotFound(t *testing.T) {
	incoming := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return nil, "", storage.ErrNotFound
		},
	}

	svc := testService(incoming, &mockStorage{})

	_, err := svc.Process(context.Background(), &model.TransformRequest{Filename: uuid.New().String()})
	require.ErrorIs(t, err, model.ErrSourceNotFound)
}

// PROCESS - SOURCE IS NOT AN IMAGE
func TestImageService_Process_CorruptSource(t *testing.T) {
	incoming := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader([]byte("not-an-image"))), model.JPEG, nil
		},
	}

	svc := testService(incoming, &mockStorage{})

	_, err := svc.Process(context.Background(), &model.TransformRequest{Filename: uuid.New().String()})
	require.ErrorIs(t, err, model.ErrProcessingFailure)
}

// PROCESS - TRAVERSAL IDENTIFIER REJECTED BEFORE STORAGE
func TestImageService_Process_InvalidIdentifier(t *testing.T) {
	touched := false
	incoming := &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			touched = true
			return nil, "", storage.ErrNotFound
		},
	}

	svc := testService(incoming, &mockStorage{})

	for _, id := range []string{"../etc/passwd", "a/b", `a\b`, ""} {
		_, err := svc.Process(context.Background(), &model.TransformRequest{Filename: id})
		require.ErrorIs(t, err, model.ErrInvalidIdentifier)
	}
	require.False(t, touched)
}

// PROCESS - DERIVED PUT FAIL
func TestImageService_Process_StorageError(t *testing.T) {
	id := uuid.New().String()
	incoming := sourceStorage(t, id)
	derived := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			return errors.New("storage is down")
		},
	}

	svc := testService(incoming, derived)

	_, err := svc.Process(context.Background(), &model.TransformRequest{Filename: id})
	require.ErrorIs(t, err, model.ErrProcessingFailure)
}

// DOWNLOAD - SUCCESS
func TestImageService_Download_OK(t *testing.T) {
	derived := &mockStorage{
		existsFn: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader([]byte("jpeg-bytes"))), model.JPEG, nil
		},
	}

	svc := ImageService{derived: derived}

	res, cType, err := svc.Download(context.Background(), "some-id_preview.jpg")
	require.NoError(t, err)
	require.Equal(t, model.JPEG, cType)

	data, err := io.ReadAll(res)
	require.NoError(t, err)
	require.NoError(t, res.Close())
	require.Equal(t, "jpeg-bytes", string(data))
}

// DOWNLOAD - FILE MISSING
func TestImageService_Download_NotFound(t *testing.T) {
	derived := &mockStorage{
		existsFn: func(ctx context.Context, key string) (bool, error) {
			return false, nil
		},
	}

	svc := ImageService{derived: derived}

	_, _, err := svc.Download(context.Background(), "some-id_preview.jpg")
	require.ErrorIs(t, err, model.ErrAssetNotFound)
}

// DOWNLOAD - FILE VANISHED BETWEEN EXISTS AND GET
func TestImageService_Download_VanishedFile(t *testing.T) {
	derived := &mockStorage{
		existsFn: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			return nil, "", storage.ErrNotFound
		},
	}

	svc := ImageService{derived: derived}

	_, _, err := svc.Download(context.Background(), "some-id_preview.jpg")
	require.ErrorIs(t, err, model.ErrAssetNotFound)
}

// DOWNLOAD - TRAVERSAL NAME
func TestImageService_Download_InvalidIdentifier(t *testing.T) {
	svc := ImageService{}

	_, _, err := svc.Download(context.Background(), "../secret.jpg")
	require.ErrorIs(t, err, model.ErrInvalidIdentifier)
}

// хелпер: сервис с тестовыми настройками движка
func testService(incoming, derived *mockStorage) ImageService {
	return ImageService{
		incoming: incoming,
		derived:  derived,
		proc: config.ProcessingConfig{
			PreviewBound:   800,
			PreviewQuality: 50,
			FullQuality:    90,
		},
	}
}

// хелпер: входящее хранилище с одним валидным JPEG-исходником
func sourceStorage(t *testing.T, id string) *mockStorage {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 8), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	data := buf.Bytes()

	return &mockStorage{
		getFn: func(ctx context.Context, key string) (io.ReadCloser, string, error) {
			if key != id {
				return nil, "", storage.ErrNotFound
			}
			return io.NopCloser(bytes.NewReader(data)), model.JPEG, nil
		},
	}
}

// хелпер для создания файла
func newFakeFile(content string) multipart.File {
	return &fakeMultipartFile{
		Reader: bytes.NewReader([]byte(content)),
	}
}
