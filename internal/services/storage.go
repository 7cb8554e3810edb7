package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"linguamentor/backend/internal/config"
)

// ErrFileNotFound is returned by Open when the key does not name a stored
// file.
var ErrFileNotFound = errors.New("stored file not found")

// ErrInvalidKey is returned for keys that do not name a location inside the
// store.
var ErrInvalidKey = errors.New("storage key outside upload directory")

// StorageService keeps uploaded recordings until the worker reads them. The
// key returned by SaveFile is what travels in the upload message.
type StorageService interface {
	EnsureReady(ctx context.Context) error
	SaveFile(ctx context.Context, file *multipart.FileHeader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, key string) error
}

// NewStorage picks the backend named by cfg.Driver.
func NewStorage(cfg config.StorageConfig) (StorageService, error) {
	switch cfg.Driver {
	case "", "local":
		return NewStorageService(cfg.UploadPath)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

type storageService struct {
	uploadPath string
}

// NewStorageService stores files on local disk under uploadPath. Keys are
// absolute paths.
func NewStorageService(uploadPath string) (StorageService, error) {
	abs, err := filepath.Abs(uploadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload path: %w", err)
	}

	return &storageService{
		uploadPath: abs,
	}, nil
}

func (s *storageService) EnsureReady(ctx context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	filePath := filepath.Join(s.uploadPath, uniqueName(file.Filename))

	// Open source file
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Create destination file
	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

func (s *storageService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.checkKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *storageService) DeleteFile(ctx context.Context, key string) error {
	if err := s.checkKey(key); err != nil {
		return err
	}

	if err := os.Remove(key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// checkKey rejects keys that resolve outside the upload directory.
func (s *storageService) checkKey(key string) error {
	if !filepath.IsAbs(key) {
		return fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	rel, err := filepath.Rel(s.uploadPath, filepath.Clean(key))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return nil
}

// uniqueName keeps the original extension so providers can infer the format.
func uniqueName(original string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(original))
}
