package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/kalamitra/kalamitra-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MinPasswordLength is the shortest password accepted at signup
const MinPasswordLength = 8

// bcrypt only reads the first 72 bytes
const maxPasswordBytes = 72

// PasswordHashCost is the bcrypt cost for new password hashes
// Can be lowered for testing
var PasswordHashCost = bcrypt.DefaultCost

// AccountService manages user and artisan accounts
type AccountService struct {
	db *gorm.DB
}

// UserSignup holds the fields for a new user account
type UserSignup struct {
	Name     string
	Email    string
	Password string
}

// ArtisanSignup holds the fields for a new artisan account
type ArtisanSignup struct {
	Name      string
	Email     string
	Password  string
	CraftType string
	Location  string
	Bio       string
	Contact   string
}

// ArtisanProfileUpdate holds optional profile changes; nil fields are left as is
type ArtisanProfileUpdate struct {
	Name      *string
	CraftType *string
	Location  *string
	Bio       *string
	Contact   *string
}

// NewAccountService creates an account service backed by db
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// SignupUser creates a user account
func (s *AccountService) SignupUser(ctx context.Context, in UserSignup) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email, err := validateCredentials(name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{Name: name, Email: email, PasswordHash: hash}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return conflict("EMAIL_EXISTS", "Email already registered")
		}
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return conflict("EMAIL_EXISTS", "Email already registered")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SignupArtisan creates an artisan account
func (s *AccountService) SignupArtisan(ctx context.Context, in ArtisanSignup) (*models.Artisan, error) {
	name := strings.TrimSpace(in.Name)
	email, err := validateCredentials(name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	craftType := strings.TrimSpace(in.CraftType)
	if craftType == "" {
		return nil, invalid("MISSING_CRAFT_TYPE", "Craft type is required")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	artisan := models.Artisan{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CraftType:    craftType,
		Location:     strings.TrimSpace(in.Location),
		Bio:          strings.TrimSpace(in.Bio),
		Contact:      strings.TrimSpace(in.Contact),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Artisan{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return conflict("EMAIL_EXISTS", "Email already registered")
		}
		if err := tx.Create(&artisan).Error; err != nil {
			if isDuplicateKey(err) {
				return conflict("EMAIL_EXISTS", "Email already registered")
			}
			return fmt.Errorf("failed to create artisan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &artisan, nil
}

// Authenticate checks an email and password against the account table for role
func (s *AccountService) Authenticate(ctx context.Context, email, password, role string) (models.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	badCredentials := unauthorized("INVALID_CREDENTIALS", "Invalid email or password")

	var id uint
	var hash string
	db := s.db.WithContext(ctx)
	switch role {
	case models.RoleUser:
		var user models.User
		if err := db.Where("email = ?", email).Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Principal{}, badCredentials
			}
			return models.Principal{}, fmt.Errorf("failed to load user: %w", err)
		}
		id, hash = user.ID, user.PasswordHash
	case models.RoleArtisan:
		var artisan models.Artisan
		if err := db.Where("email = ?", email).Take(&artisan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Principal{}, badCredentials
			}
			return models.Principal{}, fmt.Errorf("failed to load artisan: %w", err)
		}
		id, hash = artisan.ID, artisan.PasswordHash
	default:
		return models.Principal{}, invalid("INVALID_ROLE", "Role must be 'user' or 'artisan'")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.Principal{}, badCredentials
	}
	return models.Principal{ID: id, Role: role}, nil
}

// GetUser returns a user by id
func (s *AccountService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Take(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("USER_NOT_FOUND", "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetArtisan returns an artisan by id with their products
func (s *AccountService) GetArtisan(ctx context.Context, id uint) (*models.Artisan, error) {
	var artisan models.Artisan
	err := s.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC").Order("id DESC") }).
		Take(&artisan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("ARTISAN_NOT_FOUND", "Artisan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artisan: %w", err)
	}
	if artisan.Products == nil {
		artisan.Products = []models.Product{}
	}
	return &artisan, nil
}

// ListArtisans returns every artisan in signup order
func (s *AccountService) ListArtisans(ctx context.Context) ([]models.Artisan, error) {
	artisans := []models.Artisan{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&artisans).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch artisans: %w", err)
	}
	return artisans, nil
}

// UpdateArtisanProfile applies profile changes to the calling artisan
func (s *AccountService) UpdateArtisanProfile(ctx context.Context, p models.Principal, in ArtisanProfileUpdate) (*models.Artisan, error) {
	if !p.IsArtisan() {
		return nil, unauthorized("FORBIDDEN", "Only artisans have a profile to update")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("MISSING_NAME", "Name cannot be empty")
		}
		updates["name"] = name
	}
	if in.CraftType != nil {
		craftType := strings.TrimSpace(*in.CraftType)
		if craftType == "" {
			return nil, invalid("MISSING_CRAFT_TYPE", "Craft type cannot be empty")
		}
		updates["craft_type"] = craftType
	}
	if in.Location != nil {
		updates["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Bio != nil {
		updates["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Contact != nil {
		updates["contact"] = strings.TrimSpace(*in.Contact)
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Artisan{}).Where("id = ?", p.ID).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update artisan: %w", res.Error)
		}
	}
	return s.GetArtisan(ctx, p.ID)
}

// SetArtisanImage records the calling artisan's profile image URL
func (s *AccountService) SetArtisanImage(ctx context.Context, p models.Principal, imageURL string) (*models.Artisan, error) {
	if !p.IsArtisan() {
		return nil, unauthorized("FORBIDDEN", "Only artisans have a profile image")
	}
	res := s.db.WithContext(ctx).Model(&models.Artisan{}).Where("id = ?", p.ID).Update("image_url", imageURL)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update artisan image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("ARTISAN_NOT_FOUND", "Artisan not found")
	}
	return s.GetArtisan(ctx, p.ID)
}

// DeleteUser removes the calling user with their wishlist, chats, messages
// and ratings, and recomputes the aggregate of every artisan they rated
func (s *AccountService) DeleteUser(ctx context.Context, p models.Principal) error {
	if !p.IsUser() {
		return unauthorized("FORBIDDEN", "Only users can delete a user account")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Holding the user row keeps new ratings by this user out until commit
		if err := lockUser(tx, p.ID, "UPDATE"); err != nil {
			return err
		}

		var ratedIDs []uint
		if err := tx.Model(&models.Rating{}).Where("user_id = ?", p.ID).Pluck("artisan_id", &ratedIDs).Error; err != nil {
			return fmt.Errorf("failed to collect ratings: %w", err)
		}
		// Lock in id order so concurrent raters and deleters cannot deadlock
		sort.Slice(ratedIDs, func(i, j int) bool { return ratedIDs[i] < ratedIDs[j] })
		var rated []models.Artisan
		if len(ratedIDs) > 0 {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id IN ?", ratedIDs).Order("id ASC").Find(&rated).Error; err != nil {
				return fmt.Errorf("failed to lock rated artisans: %w", err)
			}
		}

		chats := tx.Model(&models.Chat{}).Select("id").Where("user_id = ?", p.ID)
		if err := tx.Where("chat_id IN (?)", chats).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		for _, model := range []interface{}{&models.Chat{}, &models.Wishlist{}, &models.Rating{}} {
			if err := tx.Where("user_id = ?", p.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete user data: %w", err)
			}
		}
		res := tx.Delete(&models.User{}, p.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("USER_NOT_FOUND", "User not found")
		}

		for i := range rated {
			if err := recomputeArtisanRating(tx, &rated[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteArtisan removes the calling artisan with their products (and the
// wishlist entries pointing at them), chats, messages and ratings
func (s *AccountService) DeleteArtisan(ctx context.Context, p models.Principal) error {
	if !p.IsArtisan() {
		return unauthorized("FORBIDDEN", "Only artisans can delete an artisan account")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockArtisan(tx, p.ID); err != nil {
			return err
		}

		chats := tx.Model(&models.Chat{}).Select("id").Where("artisan_id = ?", p.ID)
		if err := tx.Where("chat_id IN (?)", chats).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		products := tx.Model(&models.Product{}).Select("id").Where("artisan_id = ?", p.ID)
		if err := tx.Where("product_id IN (?)", products).Delete(&models.Wishlist{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist entries: %w", err)
		}
		for _, model := range []interface{}{&models.Chat{}, &models.Product{}, &models.Rating{}} {
			if err := tx.Where("artisan_id = ?", p.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete artisan data: %w", err)
			}
		}
		if err := tx.Delete(&models.Artisan{}, p.ID).Error; err != nil {
			return fmt.Errorf("failed to delete artisan: %w", err)
		}
		return nil
	})
}

// validateCredentials checks signup fields and returns the normalized email
func validateCredentials(name, email, password string) (string, error) {
	if name == "" {
		return "", invalid("MISSING_NAME", "Name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", invalid("INVALID_EMAIL", "A valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return "", invalid("WEAK_PASSWORD", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return "", invalid("PASSWORD_TOO_LONG", fmt.Sprintf("Password cannot exceed %d bytes", maxPasswordBytes))
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
