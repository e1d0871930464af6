// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	recipeusecase "recipe_backend/internal/feature/recipe/usecase"
	"recipe_backend/internal/platform/config"
	"recipe_backend/internal/platform/storage"
)

// NewImageStorage creates the recipe image store selected by cfg.Backend.
func NewImageStorage(ctx context.Context, cfg config.StorageConfig) (recipeusecase.ImageStorage, error) {
	switch cfg.Backend {
	case config.StorageLocal:
		s, err := storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageS3:
		s, err := storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
