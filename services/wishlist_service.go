package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kalamitra/kalamitra-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistService manages the set of products each user has saved
type WishlistService struct {
	db *gorm.DB
}

// WishlistView is a user's wishlist resolved to products. StaleProductIDs lists
// entries whose product no longer exists; they are skipped rather than failing.
type WishlistView struct {
	Products        []models.Product `json:"products"`
	StaleProductIDs []uint           `json:"stale_product_ids"`
}

// NewWishlistService creates a wishlist service backed by db
func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// AddToWishlist saves a product for the caller. It reports added=false when
// the product was already present.
func (s *WishlistService) AddToWishlist(ctx context.Context, p models.Principal, productID uint) (bool, error) {
	if !p.IsUser() {
		return false, unauthorized("FORBIDDEN", "Only users have wishlists")
	}

	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id").Take(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("PRODUCT_NOT_FOUND", "Product not found")
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		entry := models.Wishlist{UserID: p.ID, ProductID: productID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if res.Error != nil {
			return fmt.Errorf("failed to add wishlist entry: %w", res.Error)
		}
		added = res.RowsAffected == 1
		return nil
	})
	return added, err
}

// RemoveFromWishlist drops a product from the caller's wishlist, if present,
// and returns the remaining wishlist
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, p models.Principal, productID uint) (*WishlistView, error) {
	if !p.IsUser() {
		return nil, unauthorized("FORBIDDEN", "Only users have wishlists")
	}

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", p.ID, productID).
		Delete(&models.Wishlist{}).Error; err != nil {
		return nil, fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return s.ListWishlist(ctx, p)
}

// ListWishlist resolves the caller's wishlist entries to products, oldest first
func (s *WishlistService) ListWishlist(ctx context.Context, p models.Principal) (*WishlistView, error) {
	if !p.IsUser() {
		return nil, unauthorized("FORBIDDEN", "Only users have wishlists")
	}

	db := s.db.WithContext(ctx)
	var entries []models.Wishlist
	if err := db.Where("user_id = ?", p.ID).Order("added_at ASC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	view := &WishlistView{Products: []models.Product{}, StaleProductIDs: []uint{}}
	if len(entries) == 0 {
		return view, nil
	}

	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist products: %w", err)
	}
	byID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	for _, entry := range entries {
		product, ok := byID[entry.ProductID]
		if !ok {
			view.StaleProductIDs = append(view.StaleProductIDs, entry.ProductID)
			continue
		}
		view.Products = append(view.Products, product)
	}
	if len(view.StaleProductIDs) > 0 {
		log.Printf("Wishlist for user %d references missing products %v", p.ID, view.StaleProductIDs)
	}
	return view, nil
}
