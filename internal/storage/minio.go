package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/UnendingLoop/ImageTuner/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage scopes one logical store to a key-prefix inside a shared bucket.
type MinioStorage struct {
	bucket string
	prefix string
	client *minio.Client
}

func NewMinioStorage(client *minio.Client, bucket, prefix string) *MinioStorage {
	return &MinioStorage{bucket: bucket, prefix: prefix, client: client}
}

func newMinioClient(cfg config.MinioConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.User, cfg.Password, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	// создаем бакет если его нет
	if err := ensureBucket(context.Background(), client, cfg.Bucket); err != nil {
		return nil, fmt.Errorf("failed to create bucket in MinIO: %w", err)
	}
	return client, nil
}

func connectMinioWithRetries(cfg config.MinioConfig, delay time.Duration) *minio.Client {
	for {
		log.Println("Connecting to IMG-storage...")
		client, err := newMinioClient(cfg)
		if err != nil {
			log.Printf("Failed to init connection to IMG-storage: %v\nNext retry in %v...", err, delay)
			time.Sleep(delay)
			continue
		}
		log.Println("Successfully connected IMG-storage!")
		return client
	}
}

func (s *MinioStorage) Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("nil reader passed to storage.Put")
	}

	if _, err := s.client.PutObject(ctx, s.bucket, s.prefix+key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return err
	}
	return nil
}

func (s *MinioStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ValidateKey(key); err != nil {
		return nil, "", err
	}

	res, err := s.client.GetObject(ctx, s.bucket, s.prefix+key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", translateMinioErr(err)
	}

	resStat, err := res.Stat()
	if err != nil {
		res.Close()
		return nil, "", translateMinioErr(err)
	}
	return res, resStat.ContentType, nil
}

func (s *MinioStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	_, err := s.client.StatObject(ctx, s.bucket, s.prefix+key, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return true, nil
	case translateMinioErr(err) == ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, s.prefix+key, minio.RemoveObjectOptions{})
}

func (s *MinioStorage) ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.LastModified.Before(cutoff) {
			keys = append(keys, strings.TrimPrefix(obj.Key, s.prefix))
		}
	}
	return keys, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func translateMinioErr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return err
}
