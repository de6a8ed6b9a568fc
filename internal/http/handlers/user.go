package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yungbote/examgenius-backend/internal/http/response"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/auth/profile
func (uh *UserHandler) GetProfile(c *gin.Context) {
	u, err := uh.userService.GetProfile(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// PUT /api/auth/profile
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	u, err := uh.userService.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Profile updated", "user": u})
}
