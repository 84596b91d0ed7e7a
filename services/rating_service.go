package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kalamitra/kalamitra-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingService records user ratings and keeps each artisan's aggregate in step
type RatingService struct {
	db *gorm.DB
}

// RatingResult is the outcome of a rating write
type RatingResult struct {
	Rating  models.Rating  `json:"rating"`
	Created bool           `json:"created"`
	Artisan models.Artisan `json:"artisan"`
}

// NewRatingService creates a rating service backed by db
func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// RecordRating inserts or replaces the caller's rating of an artisan and
// recomputes the artisan's average in the same transaction
func (s *RatingService) RecordRating(ctx context.Context, p models.Principal, artisanID uint, stars int) (*RatingResult, error) {
	if !p.IsUser() {
		return nil, unauthorized("FORBIDDEN", "Only users can rate artisans")
	}
	if stars < models.MinRating || stars > models.MaxRating {
		return nil, invalid("INVALID_RATING", "Rating must be a whole number from 1 to 5")
	}

	var result RatingResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Rater before artisan, the same order DeleteUser locks in
		if err := lockUser(tx, p.ID, "SHARE"); err != nil {
			return err
		}
		artisan, err := lockArtisan(tx, artisanID)
		if err != nil {
			return err
		}

		var existing models.Rating
		err = tx.Where("user_id = ? AND artisan_id = ?", p.ID, artisanID).Take(&existing).Error
		switch {
		case err == nil:
			existing.Rating = stars
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update rating: %w", err)
			}
			result.Rating = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating := models.Rating{UserID: p.ID, ArtisanID: artisanID, Rating: stars}
			upsert := clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "artisan_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
			}
			if err := tx.Clauses(upsert).Create(&rating).Error; err != nil {
				return fmt.Errorf("failed to create rating: %w", err)
			}
			result.Rating = rating
			result.Created = true
		default:
			return fmt.Errorf("failed to look up rating: %w", err)
		}

		if err := recomputeArtisanRating(tx, artisan); err != nil {
			return err
		}
		result.Artisan = *artisan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteRating removes the caller's rating of an artisan. Deleting a rating
// that does not exist is a no-op and reports deleted=false.
func (s *RatingService) DeleteRating(ctx context.Context, p models.Principal, artisanID uint) (*models.Artisan, bool, error) {
	if !p.IsUser() {
		return nil, false, unauthorized("FORBIDDEN", "Only users can delete ratings")
	}

	var artisan *models.Artisan
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		artisan, err = lockArtisan(tx, artisanID)
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND artisan_id = ?", p.ID, artisanID).Delete(&models.Rating{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete rating: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return recomputeArtisanRating(tx, artisan)
	})
	if err != nil {
		return nil, false, err
	}
	return artisan, deleted, nil
}

// GetRating returns the caller's own rating of an artisan
func (s *RatingService) GetRating(ctx context.Context, p models.Principal, artisanID uint) (*models.Rating, error) {
	if !p.IsUser() {
		return nil, unauthorized("FORBIDDEN", "Only users have ratings")
	}

	var rating models.Rating
	err := s.db.WithContext(ctx).Where("user_id = ? AND artisan_id = ?", p.ID, artisanID).Take(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("RATING_NOT_FOUND", "You have not rated this artisan")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rating: %w", err)
	}
	return &rating, nil
}

// AverageRating rounds sum/count to one decimal place, halves away from zero.
// The division is done in integers so exact halves such as 3.25 round up.
func AverageRating(sum, count int64) float64 {
	if count <= 0 {
		return 0.0
	}
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}

// lockArtisan loads an artisan row for update. SQLite has no row locks; its
// single writer already serializes the transaction.
func lockArtisan(tx *gorm.DB, artisanID uint) (*models.Artisan, error) {
	var artisan models.Artisan
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&artisan, artisanID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("ARTISAN_NOT_FOUND", "Artisan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artisan: %w", err)
	}
	return &artisan, nil
}

// lockUser locks a user row with the given strength ("SHARE" or "UPDATE")
func lockUser(tx *gorm.DB, userID uint, strength string) error {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: strength}).Select("id").Take(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("USER_NOT_FOUND", "User not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	return nil
}

// recomputeArtisanRating rewrites the artisan's derived rating columns from
// the ratings table. The caller must hold the artisan row lock.
func recomputeArtisanRating(tx *gorm.DB, artisan *models.Artisan) error {
	var agg struct {
		Total int64
		Stars int64
	}
	if err := tx.Model(&models.Rating{}).
		Select("COUNT(*) AS total, COALESCE(SUM(rating), 0) AS stars").
		Where("artisan_id = ?", artisan.ID).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	average := AverageRating(agg.Stars, agg.Total)
	if err := tx.Model(&models.Artisan{}).Where("id = ?", artisan.ID).Updates(map[string]interface{}{
		"rating":        average,
		"total_ratings": agg.Total,
	}).Error; err != nil {
		return fmt.Errorf("failed to update artisan rating: %w", err)
	}

	artisan.Rating = average
	artisan.TotalRatings = int(agg.Total)
	return nil
}
