package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/services"
)

// GetMyProfile handles GET /api/v1/users/me - retrieves the current user's profile
func GetMyProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if !p.IsUser() {
		respondWithCode(c, http.StatusForbidden, "FORBIDDEN", "Only users have a user profile")
		return
	}

	user, err := services.NewAccountService(config.GetDB()).GetUser(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, err, "Failed to fetch user")
		return
	}

	respondData(c, http.StatusOK, user)
}

// DeleteMyAccount handles DELETE /api/v1/users/me - deletes the current user
// and everything they own
func DeleteMyAccount(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := services.NewAccountService(config.GetDB()).DeleteUser(c.Request.Context(), p); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User account deleted",
	})
}
