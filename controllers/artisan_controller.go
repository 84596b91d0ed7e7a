package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/services"
)

// UpdateArtisanRequest represents the request body for updating an artisan profile.
// Omitted fields are left unchanged.
type UpdateArtisanRequest struct {
	Name      *string `json:"name"`
	CraftType *string `json:"craft_type"`
	Location  *string `json:"location"`
	Bio       *string `json:"bio"`
	Contact   *string `json:"contact"`
}

// ListArtisans handles GET /api/v1/artisans - lists every artisan
func ListArtisans(c *gin.Context) {
	artisans, err := services.NewAccountService(config.GetDB()).ListArtisans(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch artisans")
		return
	}

	respondData(c, http.StatusOK, artisans)
}

// GetArtisan handles GET /api/v1/artisans/:id - an artisan's profile with their products
func GetArtisan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	artisan, err := services.NewAccountService(config.GetDB()).GetArtisan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch artisan")
		return
	}

	respondData(c, http.StatusOK, artisan)
}

// UpdateMyArtisanProfile handles PUT /api/v1/artisans/me
func UpdateMyArtisanProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req UpdateArtisanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	artisan, err := services.NewAccountService(config.GetDB()).UpdateArtisanProfile(c.Request.Context(), p, services.ArtisanProfileUpdate{
		Name:      req.Name,
		CraftType: req.CraftType,
		Location:  req.Location,
		Bio:       req.Bio,
		Contact:   req.Contact,
	})
	if err != nil {
		respondError(c, err, "Failed to update artisan")
		return
	}

	respondData(c, http.StatusOK, artisan)
}

// UploadMyArtisanImage handles POST /api/v1/artisans/me/image - multipart field "image"
func UploadMyArtisanImage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if !p.IsArtisan() {
		respondWithCode(c, http.StatusForbidden, "FORBIDDEN", "Only artisans have a profile image")
		return
	}

	url, ok := storeUploadedImage(c, fmt.Sprintf("artisan-%d", p.ID))
	if !ok {
		return
	}

	artisan, err := services.NewAccountService(config.GetDB()).SetArtisanImage(c.Request.Context(), p, url)
	if err != nil {
		respondError(c, err, "Failed to update artisan image")
		return
	}

	respondData(c, http.StatusOK, artisan)
}

// DeleteMyArtisanAccount handles DELETE /api/v1/artisans/me
func DeleteMyArtisanAccount(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := services.NewAccountService(config.GetDB()).DeleteArtisan(c.Request.Context(), p); err != nil {
		respondError(c, err, "Failed to delete artisan")
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Artisan account deleted",
	})
}
