package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/models"
)

// Context keys set by EnsureValidToken
const (
	principalKey = "principal"
	claimsKey    = "validated_claims"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Role string `json:"role"`
}

// Validate checks the role claim names a known principal role.
func (c CustomClaims) Validate(ctx context.Context) error {
	if !models.ValidRole(c.Role) {
		return &AuthError{Code: "INVALID_ROLE", Message: "Token role is not recognized"}
	}
	return nil
}

// RevocationChecker reports whether a token id was logged out
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewValidator builds the HS256 validator for tokens issued by this service.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken is a middleware that will check the validity of our JWT
// and place the caller's Principal in the Gin context.
func EnsureValidToken(cfg *config.Config, revocations RevocationChecker) gin.HandlerFunc {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator: %v", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("Encountered error while validating JWT: %v", err)

		body := `{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			body = `{"success":false,"error":{"code":"MISSING_TOKEN","message":"Authorization header with a bearer token is required."}}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			log.Printf("Failed to write error response: %v", writeErr)
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		validated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			validated = true
			c.Request = r
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			principal, err := principalFromClaims(token)
			if err != nil {
				abortUnauthorized(c, "INVALID_TOKEN", "Token subject is not a valid principal")
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), token.RegisteredClaims.ID)
			if err != nil {
				log.Printf("Failed to check token revocation: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "DATABASE_ERROR",
						"message": "Failed to verify token",
					},
				})
				return
			}
			if revoked {
				abortUnauthorized(c, "TOKEN_REVOKED", "Token has been logged out")
				return
			}

			c.Set(principalKey, principal)
			c.Set(claimsKey, token)
			c.Next()
		}

		// Use the JWT middleware to check the token
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !validated {
			c.Abort()
		}
	}
}

// SetPrincipal stores an authenticated principal in the Gin context
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal extracts the authenticated principal from the Gin context
func GetPrincipal(c *gin.Context) (models.Principal, error) {
	value, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, &AuthError{Code: "MISSING_PRINCIPAL", Message: "Principal not found in context"}
	}

	principal, ok := value.(models.Principal)
	if !ok {
		return models.Principal{}, &AuthError{Code: "INVALID_PRINCIPAL", Message: "Principal is not in the expected format"}
	}

	return principal, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireRole is a middleware that only lets principals with one of roles through
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil {
			abortUnauthorized(c, "UNAUTHORIZED", "Could not extract user information")
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "This action requires the " + strings.Join(roles, " or ") + " role",
			},
		})
	}
}

func principalFromClaims(token *validator.ValidatedClaims) (models.Principal, error) {
	id, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 64)
	if err != nil || id == 0 {
		return models.Principal{}, &AuthError{Code: "INVALID_SUBJECT", Message: "Token subject is not an id"}
	}
	custom, ok := token.CustomClaims.(*CustomClaims)
	if !ok {
		return models.Principal{}, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}
	return models.Principal{ID: uint(id), Role: custom.Role}, nil
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
