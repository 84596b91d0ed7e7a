package services

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/testutil"
	"github.com/kalamitra/kalamitra-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake image data")

func TestLocalImageStore_SaveImage(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalImageStore(dir)

	url, err := store.SaveImage(context.Background(), "artisan-7", pngBytes, "../../etc/vase.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/api/v1/uploads/artisan-7_"), url)
	assert.True(t, strings.HasSuffix(url, "_vase.png"), url)

	name := path.Base(url)
	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, content)

	other, err := store.SaveImage(context.Background(), "artisan-7", pngBytes, "vase.png")
	require.NoError(t, err)
	assert.NotEqual(t, url, other, "repeated uploads get distinct names")
}

func TestLocalImageStore_RejectsInvalidImages(t *testing.T) {
	store := NewLocalImageStore(t.TempDir())

	tests := []struct {
		name     string
		data     []byte
		filename string
		wantCode string
	}{
		{"empty", nil, "vase.png", "EMPTY_FILE"},
		{"wrong extension", pngBytes, "notes.txt", "UNSUPPORTED_FILE_TYPE"},
		{"too large", make([]byte, utils.MaxFileSize+1), "vase.png", "FILE_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveImage(context.Background(), "artisan-1", tt.data, tt.filename)
			var uploadErr *utils.FileUploadError
			require.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.wantCode, uploadErr.Code)
		})
	}
}

func TestS3ImageStore_SaveImage(t *testing.T) {
	client := NewMockS3Client()
	store := NewS3ImageStoreWithClient(client, "kalamitra-images", "ap-south-1", "")

	url, err := store.SaveImage(context.Background(), "product-3", pngBytes, "vase.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://kalamitra-images.s3.ap-south-1.amazonaws.com/uploads/product-3/"), url)

	objects := client.Objects()
	require.Len(t, objects, 1)
	for key, content := range objects {
		assert.True(t, strings.HasSuffix(key, "_vase.png"), key)
		assert.Equal(t, pngBytes, content)
		assert.Equal(t, "image/png", client.ContentType(key))
		assert.Equal(t, store.ObjectURL(key), url)
	}
}

func TestS3ImageStore_PublicBaseURL(t *testing.T) {
	store := NewS3ImageStoreWithClient(NewMockS3Client(), "bucket", "us-east-1", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/uploads/a/b.png", store.ObjectURL("uploads/a/b.png"))
}

func TestS3ImageStore_Errors(t *testing.T) {
	client := NewMockS3Client()
	store := NewS3ImageStoreWithClient(client, "bucket", "us-east-1", "")

	_, err := store.SaveImage(context.Background(), "artisan-1", pngBytes, "notes.pdf")
	var uploadErr *utils.FileUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Empty(t, client.Objects(), "invalid files never reach S3")

	boom := errors.New("service unavailable")
	client.FailWith(boom)
	_, err = store.SaveImage(context.Background(), "artisan-1", pngBytes, "vase.png")
	assert.ErrorIs(t, err, boom)
}

func TestInitImageStore_Local(t *testing.T) {
	original := GetImageStore()
	originalDir := utils.UploadDir
	t.Cleanup(func() {
		SetImageStore(original)
		utils.UploadDir = originalDir
	})

	cfg := testutil.TestConfig()
	cfg.StorageBackend = config.StorageLocal
	cfg.UploadDir = t.TempDir()

	store, err := InitImageStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalImageStore{}, store)
	assert.Equal(t, store, GetImageStore())
	assert.Equal(t, cfg.UploadDir, utils.UploadDir)
}

func TestMockImageStore(t *testing.T) {
	original := GetImageStore()
	t.Cleanup(func() { SetImageStore(original) })

	mock := NewMockImageStore()
	mock.SetAsMockForTesting()
	assert.Equal(t, ImageStore(mock), GetImageStore())

	url, err := mock.SaveImage(context.Background(), "artisan-1", pngBytes, "vase.png")
	require.NoError(t, err)
	assert.True(t, mock.ImageExists(url))
	assert.Len(t, mock.GetUploadedImages(), 1)

	mock.Clear()
	assert.False(t, mock.ImageExists(url))
}
