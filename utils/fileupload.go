package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is 16MB in bytes
	MaxFileSize = 16 * 1024 * 1024
)

var (
	// UploadDir is the directory where uploaded files are stored
	// Can be overridden for testing
	UploadDir = "./uploads"

	// AllowedImageExtensions lists the accepted image file extensions
	AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".jfif"}

	imageContentTypes = map[string]string{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".jfif": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
	}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImage checks an image's extension and size
func ValidateImage(filename string, size int64) error {
	if size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}
	if size == 0 {
		return &FileUploadError{
			Code:    "EMPTY_FILE",
			Message: "Uploaded file is empty",
		}
	}

	if _, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]; !ok {
		return &FileUploadError{
			Code:    "UNSUPPORTED_FILE_TYPE",
			Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedImageExtensions, ", ")),
		}
	}
	return nil
}

// ContentType returns the MIME type for an accepted image filename
func ContentType(filename string) string {
	if contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return contentType
	}
	return "application/octet-stream"
}

// ReadUploadedFile validates a multipart image upload and returns its bytes
func ReadUploadedFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	if err := ValidateImage(fileHeader.Filename, fileHeader.Size); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("warning: failed to close uploaded file: %v\n", closeErr)
		}
	}()

	content, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if err := ValidateImage(fileHeader.Filename, int64(len(content))); err != nil {
		return nil, err
	}
	return content, nil
}

// SecureFilename reduces name to a safe single path element
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	safe := strings.TrimLeft(b.String(), ".")
	if safe == "" {
		return "file"
	}
	return safe
}

// SaveFile writes data to uploadDir/filename, creating the directory if needed
func SaveFile(uploadDir, filename string, data []byte) error {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(uploadDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// GetImageURL returns the URL path for accessing the uploaded image
func GetImageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filename)
}
