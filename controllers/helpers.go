package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/middleware"
	"github.com/kalamitra/kalamitra-api/models"
	"github.com/kalamitra/kalamitra-api/services"
	"github.com/kalamitra/kalamitra-api/utils"
)

// respondError writes the error envelope for err. Anything that is not a
// known business error is logged and reported as a 500 with fallbackMessage.
func respondError(c *gin.Context, err error, fallbackMessage string) {
	var svcErr *services.ServiceError
	var uploadErr *utils.FileUploadError
	var authErr *middleware.AuthError

	switch {
	case errors.As(err, &svcErr):
		respondWithCode(c, statusForKind(svcErr.Kind), svcErr.Code, svcErr.Message)
	case errors.As(err, &uploadErr):
		respondWithCode(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
	case errors.As(err, &authErr):
		respondWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
	default:
		log.Printf("%s: %v", fallbackMessage, err)
		respondWithCode(c, http.StatusInternalServerError, "DATABASE_ERROR", fallbackMessage)
	}
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondWithCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidation(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.PureJSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondWithCode(c, http.StatusBadRequest, "INVALID_ID", "Path parameter "+name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// principal returns the authenticated caller, writing a 401 when absent
func principal(c *gin.Context) (models.Principal, bool) {
	p, err := middleware.GetPrincipal(c)
	if err != nil {
		respondError(c, err, "Could not extract user information")
		return models.Principal{}, false
	}
	return p, true
}
