package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/services"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// StartChat handles POST /api/v1/artisans/:id/chat - opens (or returns) the
// caller's chat with an artisan
func StartChat(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	artisanID, ok := idParam(c, "id")
	if !ok {
		return
	}

	chat, created, err := services.NewChatService(config.GetDB()).StartChat(c.Request.Context(), p, artisanID)
	if err != nil {
		respondError(c, err, "Failed to start chat")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondData(c, status, chat)
}

// ListChats handles GET /api/v1/chats - the caller's chats
func ListChats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	chats, err := services.NewChatService(config.GetDB()).ListChatsFor(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, "Failed to fetch chats")
		return
	}

	respondData(c, http.StatusOK, chats)
}

// SendMessage handles POST /api/v1/chats/:id/messages - sends a message on a chat
func SendMessage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	chatID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	message, err := services.NewChatService(config.GetDB()).SendMessage(c.Request.Context(), p, chatID, req.Content)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}

	respondData(c, http.StatusCreated, message)
}

// ListMessages handles GET /api/v1/chats/:id/messages?after_id=&limit= -
// lists messages on a chat, oldest first
func ListMessages(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	chatID, ok := idParam(c, "id")
	if !ok {
		return
	}

	page := services.MessagePage{}
	if raw := c.Query("after_id"); raw != "" {
		afterID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondWithCode(c, http.StatusBadRequest, "INVALID_CURSOR", "after_id must be a message id")
			return
		}
		page.AfterID = uint(afterID)
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondWithCode(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		page.Limit = limit
	}

	list, err := services.NewChatService(config.GetDB()).ListMessages(c.Request.Context(), p, chatID, page)
	if err != nil {
		respondError(c, err, "Failed to fetch messages")
		return
	}

	respondData(c, http.StatusOK, list)
}
