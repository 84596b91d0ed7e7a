package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kalamitra/kalamitra-api/models"
	"gorm.io/gorm"
)

// ProductService manages the artisans' catalog
type ProductService struct {
	db *gorm.DB
}

// ProductInput holds the fields of a new product
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
}

// NewProductService creates a product service backed by db
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// CreateProduct lists a new product for the calling artisan
func (s *ProductService) CreateProduct(ctx context.Context, p models.Principal, in ProductInput) (*models.Product, error) {
	if !p.IsArtisan() {
		return nil, unauthorized("FORBIDDEN", "Only artisans can add products")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("MISSING_NAME", "Product name is required")
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price <= 0 {
		return nil, invalid("INVALID_PRICE", "Price must be greater than zero")
	}

	product := models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		ArtisanID:   p.ID,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// GetProduct returns a product by id
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Take(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("PRODUCT_NOT_FOUND", "Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &product, nil
}

// ListProductsByArtisan returns an artisan's products, newest first
func (s *ProductService) ListProductsByArtisan(ctx context.Context, artisanID uint) ([]models.Product, error) {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Artisan{}).Where("id = ?", artisanID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check artisan: %w", err)
	}
	if count == 0 {
		return nil, notFound("ARTISAN_NOT_FOUND", "Artisan not found")
	}

	products := []models.Product{}
	if err := db.Where("artisan_id = ?", artisanID).Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// DeleteProduct removes one of the calling artisan's products and the
// wishlist entries that point at it
func (s *ProductService) DeleteProduct(ctx context.Context, p models.Principal, id uint) error {
	if !p.IsArtisan() {
		return unauthorized("FORBIDDEN", "Only artisans can delete products")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProduct(tx, p, id); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist entries: %w", err)
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// SetProductImage records the image URL of one of the calling artisan's products
func (s *ProductService) SetProductImage(ctx context.Context, p models.Principal, id uint, imageURL string) (*models.Product, error) {
	if !p.IsArtisan() {
		return nil, unauthorized("FORBIDDEN", "Only artisans can change product images")
	}

	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = ownedProduct(tx, p, id)
		if err != nil {
			return err
		}
		if err := tx.Model(product).Update("image_url", imageURL).Error; err != nil {
			return fmt.Errorf("failed to update product image: %w", err)
		}
		product.ImageURL = &imageURL
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ownedProduct loads a product and checks it belongs to the calling artisan
func ownedProduct(tx *gorm.DB, p models.Principal, id uint) (*models.Product, error) {
	var product models.Product
	err := tx.Take(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("PRODUCT_NOT_FOUND", "Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	if product.ArtisanID != p.ID {
		return nil, unauthorized("FORBIDDEN", "You can only manage your own products")
	}
	return &product, nil
}
