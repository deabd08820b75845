package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/niklvrr/TicketBoard/internal/config"
	"go.uber.org/zap"
)

var (
	ErrUnknownProvider = errors.New("unknown storage provider")
	errSave            = errors.New("save object error")
	errDelete          = errors.New("delete object error")
)

// ObjectStorage хранилище профильных изображений
type ObjectStorage interface {
	// Save сохраняет объект и возвращает публичный URL
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete не считает ошибкой отсутствие объекта
	Delete(ctx context.Context, key string) error
}

type NewStorageFunc func(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (ObjectStorage, error)

var storageMap = map[string]NewStorageFunc{}

func RegisterStorageType(provider string, fn NewStorageFunc) {
	storageMap[provider] = fn
}

func NewStorage(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (ObjectStorage, error) {
	fn, ok := storageMap[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	return fn(ctx, cfg, log)
}

// buildPath склеивает базовый путь и ключ без ведущих и хвостовых слешей
func buildPath(basePath, key string) string {
	p := strings.Trim(path.Join(basePath, key), "/")
	if p == "." {
		return ""
	}
	return p
}
