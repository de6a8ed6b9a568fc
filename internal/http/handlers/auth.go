package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yungbote/examgenius-backend/internal/http/response"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func tokenBody(message string, res *services.AuthResult) gin.H {
	return gin.H{
		"message":    message,
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	}
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokenBody("Registration successful", res))
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, tokenBody("Login successful", res))
}

// POST /api/auth/refresh
func (ah *AuthHandler) Refresh(c *gin.Context) {
	res, err := ah.authService.Refresh(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, tokenBody("Token refreshed", res))
}
