// Package storage provides the file-store contract and its backends:
// a plain directory on local disk and a minio-bucket with key-prefixes.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/UnendingLoop/ImageTuner/internal/config"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// FileStorage - контракт для работы с хранилищем одной директории/префикса
type FileStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// ValidateKey - отсекает пустые ключи и попытки выйти за пределы
// директории хранилища. Вызывается до любого обращения к ФС.
func ValidateKey(key string) error {
	if key == "" ||
		strings.Contains(key, "/") ||
		strings.Contains(key, `\`) ||
		strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

// New - собирает пару хранилищ (входящее, производное) согласно конфигу.
// Для minio коннект ретраится пока стораджа нет - как и у остальной инфры.
func New(cfg *config.Config, delay time.Duration) (incoming, derived FileStorage, err error) {
	switch cfg.Storage.Backend {
	case config.BackendMinio:
		client := connectMinioWithRetries(cfg.Storage.Minio, delay)
		return NewMinioStorage(client, cfg.Storage.Minio.Bucket, "uploads/"),
			NewMinioStorage(client, cfg.Storage.Minio.Bucket, "processed/"),
			nil
	case config.BackendLocal:
		inc, err := NewLocalStorage(cfg.Storage.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		der, err := NewLocalStorage(cfg.Storage.ProcessedDir)
		if err != nil {
			return nil, nil, err
		}
		return inc, der, nil
	default:
		return nil, nil, errors.New("unknown storage backend " + cfg.Storage.Backend)
	}
}

