package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/services"
)

// CreateProductRequest represents the request body for listing a product
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// CreateProduct handles POST /api/v1/products - lists a product for the calling artisan
func CreateProduct(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	product, err := services.NewProductService(config.GetDB()).CreateProduct(c.Request.Context(), p, services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	})
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	respondData(c, http.StatusCreated, product)
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := services.NewProductService(config.GetDB()).GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}

	respondData(c, http.StatusOK, product)
}

// UploadProductImage handles POST /api/v1/products/:id/image - multipart field "image"
func UploadProductImage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	products := services.NewProductService(config.GetDB())
	product, err := products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}
	// Check ownership before anything is written to storage
	if !p.IsArtisan() || product.ArtisanID != p.ID {
		respondWithCode(c, http.StatusForbidden, "FORBIDDEN", "You can only manage your own products")
		return
	}

	url, ok := storeUploadedImage(c, fmt.Sprintf("product-%d", product.ID))
	if !ok {
		return
	}

	product, err = products.SetProductImage(c.Request.Context(), p, id, url)
	if err != nil {
		respondError(c, err, "Failed to update product image")
		return
	}

	respondData(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
func DeleteProduct(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.NewProductService(config.GetDB()).DeleteProduct(c.Request.Context(), p, id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted",
	})
}
