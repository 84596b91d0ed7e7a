package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/models"
	"github.com/kalamitra/kalamitra-api/services"
	"github.com/kalamitra/kalamitra-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductRouter(p models.Principal) *gin.Engine {
	router := gin.New()
	router.GET("/products/:id", GetProduct)

	protected := router.Group("/", mockAuthMiddleware(p))
	protected.POST("/products", CreateProduct)
	protected.POST("/products/:id/image", UploadProductImage)
	protected.DELETE("/products/:id", DeleteProduct)
	return router
}

func TestCreateProduct(t *testing.T) {
	db := setupTestDB(t)
	artisan := testutil.CreateArtisan(t, db, "Meera")
	router := setupProductRouter(testutil.ArtisanPrincipal(artisan))

	w := performRequest(router, "POST", "/products", map[string]interface{}{
		"name": "Blue vase", "description": "Hand thrown", "price": 42.5, "category": "decor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := responseData(t, w)
	assert.Equal(t, "Blue vase", data["name"])
	assert.Equal(t, 42.5, data["price"])
	assert.Equal(t, float64(artisan.ID), data["artisan_id"])

	w = performRequest(router, "GET", fmt.Sprintf("/products/%v", data["id"]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Blue vase", responseData(t, w)["name"])
}

func TestCreateProduct_Rejections(t *testing.T) {
	db := setupTestDB(t)
	artisan := testutil.CreateArtisan(t, db, "Meera")
	user := testutil.CreateUser(t, db, "Asha")

	tests := []struct {
		name       string
		principal  models.Principal
		body       map[string]interface{}
		wantStatus int
		wantCode   string
	}{
		{"user role", testutil.UserPrincipal(user), map[string]interface{}{"name": "Vase", "price": 10}, http.StatusForbidden, "FORBIDDEN"},
		{"zero price", testutil.ArtisanPrincipal(artisan), map[string]interface{}{"name": "Vase", "price": 0}, http.StatusBadRequest, "INVALID_PRICE"},
		{"missing price", testutil.ArtisanPrincipal(artisan), map[string]interface{}{"name": "Vase"}, http.StatusBadRequest, "INVALID_PRICE"},
		{"missing name", testutil.ArtisanPrincipal(artisan), map[string]interface{}{"price": 10}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(setupProductRouter(tt.principal), "POST", "/products", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestUploadProductImage(t *testing.T) {
	db := setupTestDB(t)
	owner := testutil.CreateArtisan(t, db, "Meera")
	other := testutil.CreateArtisan(t, db, "Kiran")
	product := testutil.CreateProduct(t, db, owner.ID, "Blue vase", 40)
	path := fmt.Sprintf("/products/%d/image", product.ID)

	original := services.GetImageStore()
	t.Cleanup(func() { services.SetImageStore(original) })
	mock := services.NewMockImageStore()
	mock.SetAsMockForTesting()

	w := performUpload(setupProductRouter(testutil.ArtisanPrincipal(other)), path, "image", "vase.png", []byte("png"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, mock.GetUploadedImages(), "nothing is stored for a non-owner")

	w = performUpload(setupProductRouter(testutil.ArtisanPrincipal(owner)), path, "image", "vase.png", []byte("png"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	imageURL, ok := responseData(t, w)["image_url"].(string)
	require.True(t, ok)
	assert.True(t, mock.ImageExists(imageURL))

	w = performUpload(setupProductRouter(testutil.ArtisanPrincipal(owner)), "/products/9999/image", "image", "vase.png", []byte("png"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	db := setupTestDB(t)
	owner := testutil.CreateArtisan(t, db, "Meera")
	other := testutil.CreateArtisan(t, db, "Kiran")
	product := testutil.CreateProduct(t, db, owner.ID, "Blue vase", 40)
	path := fmt.Sprintf("/products/%d", product.ID)

	w := performRequest(setupProductRouter(testutil.ArtisanPrincipal(other)), "DELETE", path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(setupProductRouter(testutil.ArtisanPrincipal(owner)), "DELETE", path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(setupProductRouter(testutil.ArtisanPrincipal(owner)), "GET", path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, w))
}
