package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/kalamitra/kalamitra-api/utils"
)

// MockImageStore is a mock implementation of ImageStore for testing
type MockImageStore struct {
	uploadedImages map[string][]byte // map of image URL to file content
	mu             sync.RWMutex
}

// NewMockImageStore creates a new mock image store
func NewMockImageStore() *MockImageStore {
	return &MockImageStore{
		uploadedImages: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global image store instance for testing
func (m *MockImageStore) SetAsMockForTesting() {
	SetImageStore(m)
}

// SaveImage validates the image and keeps it in memory
func (m *MockImageStore) SaveImage(ctx context.Context, ownerKey string, data []byte, filename string) (string, error) {
	if err := utils.ValidateImage(filename, int64(len(data))); err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/uploads/%s/mock_%s",
		utils.SecureFilename(ownerKey), utils.SecureFilename(filename))

	m.mu.Lock()
	m.uploadedImages[url] = append([]byte(nil), data...)
	m.mu.Unlock()

	return url, nil
}

// GetUploadedImages returns all uploaded images (for testing assertions)
func (m *MockImageStore) GetUploadedImages() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent race conditions
	images := make(map[string][]byte, len(m.uploadedImages))
	for k, v := range m.uploadedImages {
		images[k] = v
	}
	return images
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageStore) ImageExists(url string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedImages[url]
	return exists
}

// Clear removes all images from mock storage
func (m *MockImageStore) Clear() {
	m.mu.Lock()
	m.uploadedImages = make(map[string][]byte)
	m.mu.Unlock()
}
