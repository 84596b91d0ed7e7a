package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionClaims are the claims carried by an access token
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed access token handed to a client at login
type IssuedToken struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Principal models.Principal `json:"principal"`
}

// TokenService issues and revokes access tokens
type TokenService struct {
	db       *gorm.DB
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service using the JWT settings in cfg
func NewTokenService(db *gorm.DB, cfg *config.Config) *TokenService {
	return &TokenService{
		db:       db,
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.TokenTTL,
		now:      time.Now,
	}
}

// Issue signs a new HS256 token for p
func (s *TokenService) Issue(p models.Principal) (*IssuedToken, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := SessionClaims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &IssuedToken{Token: signed, ExpiresAt: expiresAt.Truncate(time.Second), Principal: p}, nil
}

// Revoke blocks a token id until expiresAt. Entries that have already
// expired are purged on the way.
func (s *TokenService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return invalid("MISSING_TOKEN_ID", "Token has no id to revoke")
	}

	db := s.db.WithContext(ctx)
	if err := db.Where("expires_at < ?", s.now().UTC()).Delete(&models.RevokedToken{}).Error; err != nil {
		return fmt.Errorf("failed to purge revoked tokens: %w", err)
	}
	entry := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt.UTC()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id was logged out
func (s *TokenService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return count > 0, nil
}
