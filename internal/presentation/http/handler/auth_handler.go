package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/restoflow/websrm-adapter/internal/presentation/http/dto/request"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/dto/response"
	"github.com/restoflow/websrm-adapter/pkg/utils"
)

// AuthHandler handles operator token refresh
type AuthHandler struct {
	jwtManager *utils.JWTManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtManager *utils.JWTManager) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager}
}

// Refresh exchanges a valid refresh token for a new access/refresh pair.
// Initial tokens are minted out of band with the tokenctl command.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(claims.Operator, claims.Roles)
	if err != nil {
		response.Error(c, err)
		return
	}
	refreshToken, err := h.jwtManager.GenerateRefreshToken(claims.Operator, claims.Roles)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
	})
}
