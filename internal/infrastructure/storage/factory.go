package storage

import (
	"fmt"

	purchasingapp "github.com/printcloud/backend/internal/application/purchasing"
	infraconfig "github.com/printcloud/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewScanStorage creates the scan storage backend selected by cfg.Driver.
// Supported drivers: "s3" (any S3-compatible endpoint) and "local".
func NewScanStorage(cfg *infraconfig.StorageConfig, logger *zap.Logger) (purchasingapp.ScanStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage configuration is required")
	}

	switch cfg.Driver {
	case "s3", "":
		return NewS3ScanStorage(cfg, WithLogger(logger))
	case "local":
		return NewLocalScanStorage(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
