package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/utils"
)

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves images saved by the local image store
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Validate filename is not empty
	if filename == "" {
		respondWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondWithCode(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	if err := utils.ValidateImage(filename, 1); err != nil {
		respondWithCode(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", err.Error())
		return
	}

	// Construct full file path
	filePath := filepath.Join(utils.UploadDir, filename)

	// Check if file exists
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		respondWithCode(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	// Serve the file with appropriate headers
	c.Header("Content-Type", utils.ContentType(filename))
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
