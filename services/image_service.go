package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/utils"
)

// ImageStore validates and stores uploaded images
type ImageStore interface {
	// SaveImage stores data under a name derived from ownerKey and filename
	// and returns the URL the image is served from
	SaveImage(ctx context.Context, ownerKey string, data []byte, filename string) (string, error)
}

// LocalImageStore implements ImageStore on the local filesystem; files are
// served by GET /api/v1/uploads/:filename
type LocalImageStore struct {
	dir string
}

var imageStoreInstance ImageStore

// NewLocalImageStore creates a store writing into dir
func NewLocalImageStore(dir string) *LocalImageStore {
	return &LocalImageStore{dir: dir}
}

// InitImageStore initializes the image store selected by STORAGE_BACKEND
func InitImageStore(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		store, err := NewS3ImageStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		imageStoreInstance = store
	default:
		utils.UploadDir = cfg.UploadDir
		imageStoreInstance = NewLocalImageStore(cfg.UploadDir)
	}
	return imageStoreInstance, nil
}

// GetImageStore returns the initialized image store instance
func GetImageStore() ImageStore {
	return imageStoreInstance
}

// SetImageStore sets the image store instance (primarily for testing)
func SetImageStore(store ImageStore) {
	imageStoreInstance = store
}

// SaveImage validates and writes an image to disk
func (s *LocalImageStore) SaveImage(ctx context.Context, ownerKey string, data []byte, filename string) (string, error) {
	if err := utils.ValidateImage(filename, int64(len(data))); err != nil {
		return "", err
	}

	name := storedImageName(ownerKey, filename)
	if err := utils.SaveFile(s.dir, name, data); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return utils.GetImageURL(name), nil
}

// storedImageName builds a collision-free, path-safe file name
func storedImageName(ownerKey, filename string) string {
	return fmt.Sprintf("%s_%s_%s",
		utils.SecureFilename(ownerKey),
		uuid.NewString()[:8],
		utils.SecureFilename(filename))
}
