package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/middleware"
	"github.com/kalamitra/kalamitra-api/services"
)

// SignupUserRequest represents the request body for creating a user account
type SignupUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupArtisanRequest represents the request body for creating an artisan account
type SignupArtisanRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	CraftType string `json:"craft_type" binding:"required"`
	Location  string `json:"location"`
	Bio       string `json:"bio"`
	Contact   string `json:"contact"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// SignupUser handles POST /api/v1/auth/signup - creates a user account
func SignupUser(c *gin.Context) {
	var req SignupUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := services.NewAccountService(config.GetDB()).SignupUser(c.Request.Context(), services.UserSignup{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}

	respondData(c, http.StatusCreated, user)
}

// SignupArtisan handles POST /api/v1/auth/artisans/signup - creates an artisan account
func SignupArtisan(c *gin.Context) {
	var req SignupArtisanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	artisan, err := services.NewAccountService(config.GetDB()).SignupArtisan(c.Request.Context(), services.ArtisanSignup{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CraftType: req.CraftType,
		Location:  req.Location,
		Bio:       req.Bio,
		Contact:   req.Contact,
	})
	if err != nil {
		respondError(c, err, "Failed to create artisan")
		return
	}

	respondData(c, http.StatusCreated, artisan)
}

// Login handles POST /api/v1/auth/login - exchanges credentials for an access token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	db := config.GetDB()
	p, err := services.NewAccountService(db).Authenticate(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		var svcErr *services.ServiceError
		if errors.Is(err, services.ErrUnauthorized) && errors.As(err, &svcErr) {
			// Bad credentials are an authentication failure, not a permission one
			respondWithCode(c, http.StatusUnauthorized, svcErr.Code, svcErr.Message)
			return
		}
		respondError(c, err, "Failed to log in")
		return
	}

	issued, err := services.NewTokenService(db, config.GetConfig()).Issue(p)
	if err != nil {
		respondError(c, err, "Failed to issue token")
		return
	}

	respondData(c, http.StatusOK, issued)
}

// Logout handles POST /api/v1/auth/logout - revokes the presented token
func Logout(c *gin.Context) {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		respondError(c, err, "Could not extract token claims")
		return
	}

	expiresAt := time.Unix(claims.RegisteredClaims.Expiry, 0)
	tokens := services.NewTokenService(config.GetDB(), config.GetConfig())
	if err := tokens.Revoke(c.Request.Context(), claims.RegisteredClaims.ID, expiresAt); err != nil {
		respondError(c, err, "Failed to log out")
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}
