package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	purchasingapp "github.com/printcloud/backend/internal/application/purchasing"
	infraconfig "github.com/printcloud/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure LocalScanStorage implements ScanStorage
var _ purchasingapp.ScanStorage = (*LocalScanStorage)(nil)

// LocalScanStorage stores objects on the local filesystem. It is intended
// for development and single-node deployments where S3 is not available.
type LocalScanStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalScanStorage creates a LocalScanStorage rooted at cfg.LocalDir.
// The directory is created if it does not exist.
func NewLocalScanStorage(cfg *infraconfig.StorageConfig, logger *zap.Logger) (*LocalScanStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.LocalDir == "" {
		return nil, errors.New("local storage directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalScanStorage{
		baseDir: cfg.LocalDir,
		logger:  logger,
	}, nil
}

// resolve maps a storage key to a path under baseDir, rejecting keys that
// would escape the base directory.
func (s *LocalScanStorage) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}

	return filepath.Join(s.baseDir, cleaned), nil
}

// Put stores an object under the given key
func (s *LocalScanStorage) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	// Write to a temp file first so readers never see partial objects.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close object file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store object: %w", err)
	}

	return nil
}

// Get retrieves a stored object
func (s *LocalScanStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}

	return f, nil
}

// Delete removes a stored object. Deleting a missing object is not an error.
func (s *LocalScanStorage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// GenerateDownloadURL returns a file:// URL for the stored object.
// Local storage has no real presigning; the expiry is advisory only.
func (s *LocalScanStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", time.Time{}, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", time.Time{}, fmt.Errorf("object not found: %s", key)
		}
		return "", time.Time{}, fmt.Errorf("failed to stat object: %w", err)
	}

	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to resolve object path: %w", err)
	}

	return "file://" + filepath.ToSlash(abs), time.Now().Add(expiresIn), nil
}
