package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a multipart.FileHeader for testing
func createTestFileHeader(filename string, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)

	if len(form.File["image"]) > 0 {
		return form.File["image"][0]
	}
	return nil
}

func TestValidateImage_AllowedExtensions(t *testing.T) {
	for _, name := range []string{"a.png", "a.jpg", "a.jpeg", "a.gif", "a.webp", "a.jfif", "UPPER.PNG", "Mixed.JpEg"} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, ValidateImage(name, 10))
		})
	}
}

func TestValidateImage_UnsupportedType(t *testing.T) {
	for _, name := range []string{"a.bmp", "a.svg", "a.pdf", "noextension", "png"} {
		t.Run(name, func(t *testing.T) {
			err := ValidateImage(name, 10)
			require.Error(t, err)

			fileErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, "UNSUPPORTED_FILE_TYPE", fileErr.Code)
		})
	}
}

func TestValidateImage_FileTooLarge(t *testing.T) {
	err := ValidateImage("large.png", MaxFileSize+1)
	require.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok)
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateImage_Empty(t *testing.T) {
	err := ValidateImage("empty.png", 0)
	require.Error(t, err)
	assert.Equal(t, "EMPTY_FILE", err.(*FileUploadError).Code)
}

func TestReadUploadedFile(t *testing.T) {
	content := []byte("fake jpeg content")
	fileHeader := createTestFileHeader("vase.jpg", content)
	require.NotNil(t, fileHeader)

	data, err := ReadUploadedFile(fileHeader)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	bad := createTestFileHeader("vase.exe", content)
	require.NotNil(t, bad)
	_, err = ReadUploadedFile(bad)
	assert.Error(t, err)
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"..\\windows\\evil.png", "evil.png"},
		{"my photo (1).jpg", "my_photo__1_.jpg"},
		{"ravi@example.com_pot.webp", "ravi_example.com_pot.webp"},
		{"...", "file"},
		{"", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, SaveFile(dir, "pot.png", []byte("data")))

	saved, err := os.ReadFile(filepath.Join(dir, "pot.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), saved)
}

func TestContentTypeAndURL(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("x.jfif"))
	assert.Equal(t, "image/webp", ContentType("x.WEBP"))
	assert.Equal(t, "application/octet-stream", ContentType("x.txt"))
	assert.Equal(t, "/api/v1/uploads/pot.png", GetImageURL("pot.png"))
	assert.Equal(t, "", GetImageURL(""))
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_CODE",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())
}
