package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"topup_relay/internal/auth"
	"topup_relay/internal/domain"
	"topup_relay/internal/registry"
)

// RegisterRequest carries the caller's identity and display fields
type RegisterRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"` // External identity
	Username   string `json:"username"`                       // Optional display name
	FirstName  string `json:"first_name"`                     // Optional display name
	LastName   string `json:"last_name"`                      // Optional display name
}

// AuthResponse returns the minted token alongside the stored account
type AuthResponse struct {
	Token   string         `json:"token"`
	Account domain.Account `json:"account"`
}

// RegisterHandler ensures the account exists and mints a JWT for the
// caller. Registration is idempotent, so hitting this on every session is
// fine.
func RegisterHandler(reg *registry.Registry, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		account, err := reg.EnsureAccount(c.Request.Context(), req.TelegramID, domain.Profile{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": "Registration failed"})
			return
		}
		token, err := auth.GenerateJWT(req.TelegramID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, Account: account})
	}
}
