package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/services"
)

// ListWishlist handles GET /api/v1/wishlist
func ListWishlist(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	view, err := services.NewWishlistService(config.GetDB()).ListWishlist(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, "Failed to fetch wishlist")
		return
	}

	respondData(c, http.StatusOK, view)
}

// AddToWishlist handles POST /api/v1/wishlist/:productId
func AddToWishlist(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	added, err := services.NewWishlistService(config.GetDB()).AddToWishlist(c.Request.Context(), p, productID)
	if err != nil {
		respondError(c, err, "Failed to update wishlist")
		return
	}

	status := http.StatusOK
	message := "Product already in wishlist"
	if added {
		status = http.StatusCreated
		message = "Product added to wishlist"
	}
	c.PureJSON(status, gin.H{
		"success": true,
		"message": message,
		"data": gin.H{
			"product_id": productID,
			"added":      added,
		},
	})
}

// RemoveFromWishlist handles DELETE /api/v1/wishlist/:productId and returns
// the remaining wishlist
func RemoveFromWishlist(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	view, err := services.NewWishlistService(config.GetDB()).RemoveFromWishlist(c.Request.Context(), p, productID)
	if err != nil {
		respondError(c, err, "Failed to update wishlist")
		return
	}

	respondData(c, http.StatusOK, view)
}
