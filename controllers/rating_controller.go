package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/services"
)

// RateArtisanRequest represents the request body for rating an artisan.
// Rating is a pointer so that 0 reaches range validation instead of "required".
type RateArtisanRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

// RateArtisan handles POST /api/v1/artisans/:id/rating - creates or replaces the caller's rating
func RateArtisan(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	artisanID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RateArtisanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := services.NewRatingService(config.GetDB()).RecordRating(c.Request.Context(), p, artisanID, *req.Rating)
	if err != nil {
		respondError(c, err, "Failed to record rating")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondData(c, status, result)
}

// GetMyRating handles GET /api/v1/artisans/:id/rating - the caller's rating of an artisan
func GetMyRating(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	artisanID, ok := idParam(c, "id")
	if !ok {
		return
	}

	rating, err := services.NewRatingService(config.GetDB()).GetRating(c.Request.Context(), p, artisanID)
	if err != nil {
		respondError(c, err, "Failed to fetch rating")
		return
	}

	respondData(c, http.StatusOK, rating)
}

// DeleteRating handles DELETE /api/v1/artisans/:id/rating
func DeleteRating(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	artisanID, ok := idParam(c, "id")
	if !ok {
		return
	}

	artisan, deleted, err := services.NewRatingService(config.GetDB()).DeleteRating(c.Request.Context(), p, artisanID)
	if err != nil {
		respondError(c, err, "Failed to delete rating")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"deleted": deleted,
		"artisan": artisan,
	})
}
