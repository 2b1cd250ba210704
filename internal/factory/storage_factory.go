package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/adapters/storage"
	"github.com/jmohr/mailcast/internal/config"
	"github.com/jmohr/mailcast/internal/core"
)

// StorageFactory creates object stores based on configuration
type StorageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger *zap.Logger) *StorageFactory {
	return &StorageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateObjectStore creates an object store based on the configuration
func (f *StorageFactory) CreateObjectStore(ctx context.Context) (core.ObjectStore, error) {
	storageCfg := f.cfg.GetStorage()

	switch storageCfg.Provider {
	case "r2":
		r2Cfg := f.cfg.GetR2()
		return storage.NewR2Store(ctx, storage.R2Config{
			AccountID:       r2Cfg.AccountID,
			AccessKeyID:     r2Cfg.AccessKeyID,
			SecretAccessKey: r2Cfg.SecretAccessKey,
			Bucket:          storageCfg.Bucket,
		}, f.logger)
	case "s3":
		return storage.NewS3Store(ctx, f.cfg.GetS3().Region, storageCfg.Bucket, f.logger)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", storageCfg.Provider)
	}
}
