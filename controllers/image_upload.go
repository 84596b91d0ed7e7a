package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/services"
	"github.com/kalamitra/kalamitra-api/utils"
)

// storeUploadedImage reads the multipart "image" field and saves it through
// the configured image store. It writes the error response itself.
func storeUploadedImage(c *gin.Context, ownerKey string) (string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			respondWithCode(c, http.StatusBadRequest, "MISSING_FILE", "Multipart field 'image' is required")
			return "", false
		}
		respondValidation(c, err)
		return "", false
	}

	data, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		respondError(c, err, "Failed to read uploaded file")
		return "", false
	}

	store := services.GetImageStore()
	if store == nil {
		respondWithCode(c, http.StatusInternalServerError, "STORAGE_UNAVAILABLE", "Image storage is not configured")
		return "", false
	}

	url, err := store.SaveImage(c.Request.Context(), ownerKey, data, fileHeader.Filename)
	if err != nil {
		respondError(c, err, "Failed to store image")
		return "", false
	}
	return url, true
}
