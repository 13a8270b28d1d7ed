// Package config collects all app-settings from env into one explicit struct
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	wbfconfig "github.com/wb-go/wbf/config"
)

const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

type ServerConfig struct {
	Port    string
	GinMode string
}

type MinioConfig struct {
	Endpoint string
	User     string
	Password string
	Bucket   string
}

type StorageConfig struct {
	Backend      string // local | minio
	UploadDir    string
	ProcessedDir string
	Minio        MinioConfig
}

type LimitsConfig struct {
	RateWindow    time.Duration
	RateMax       int
	MaxUploadSize int64
}

type RetentionConfig struct {
	MaxAge        time.Duration
	SweepInterval time.Duration
}

type ProcessingConfig struct {
	PreviewBound   int // максимальная сторона превью в пикселях
	PreviewQuality int
	FullQuality    int
}

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Limits     LimitsConfig
	Retention  RetentionConfig
	Processing ProcessingConfig
}

// Load - читает энвы через wbf-конфиг, парсит в типизированную структуру
// и создает локальные директории хранилища если они нужны
func Load(src *wbfconfig.Config) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getString(src, "APP_PORT", "3000"),
			GinMode: getString(src, "GIN_MODE", "release"),
		},
		Storage: StorageConfig{
			Backend:      getString(src, "STORAGE_BACKEND", BackendLocal),
			UploadDir:    getString(src, "UPLOAD_DIR", "./uploads"),
			ProcessedDir: getString(src, "PROCESSED_DIR", "./processed"),
			Minio: MinioConfig{
				Endpoint: getString(src, "MINIO_ENDPOINT", "localhost:9000"),
				User:     getString(src, "MINIO_USER", ""),
				Password: getString(src, "MINIO_PASS", ""),
				Bucket:   getString(src, "MINIO_BUCKET", "images"),
			},
		},
	}

	var err error
	if cfg.Limits.RateWindow, err = getDuration(src, "RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Limits.RateMax, err = getInt(src, "RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	maxUpload, err := getInt(src, "MAX_UPLOAD_SIZE", 32<<20)
	if err != nil {
		return nil, err
	}
	cfg.Limits.MaxUploadSize = int64(maxUpload)

	if cfg.Retention.MaxAge, err = getDuration(src, "RETENTION_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Retention.SweepInterval, err = getDuration(src, "SWEEP_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Processing.PreviewBound, err = getInt(src, "PREVIEW_BOUND", 800); err != nil {
		return nil, err
	}
	if cfg.Processing.PreviewQuality, err = getInt(src, "PREVIEW_QUALITY", 50); err != nil {
		return nil, err
	}
	if cfg.Processing.FullQuality, err = getInt(src, "FULL_QUALITY", 90); err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case BackendLocal:
		if err := createDirs(cfg.Storage.UploadDir, cfg.Storage.ProcessedDir); err != nil {
			return nil, err
		}
	case BackendMinio:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

func createDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getString(src *wbfconfig.Config, key, def string) string {
	if v := src.GetString(key); v != "" {
		return v
	}
	return def
}

func getInt(src *wbfconfig.Config, key string, def int) (int, error) {
	raw := src.GetString(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return v, nil
}

func getDuration(src *wbfconfig.Config, key string, def time.Duration) (time.Duration, error) {
	raw := src.GetString(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return v, nil
}
