package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/http/response"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(admin services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// POST /api/admin/questions/upload
func (ah *AdminHandler) UploadQuestions(c *gin.Context) {
	var req []services.QuestionUpload
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	out, err := ah.admin.UploadQuestions(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"message":   "Questions uploaded",
		"count":     len(out),
		"questions": out,
	})
}

// GET /api/admin/questions?topic_id=&limit=&offset=
func (ah *AdminHandler) ListQuestions(c *gin.Context) {
	var topicID *uuid.UUID
	if raw := c.Query("topic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, apierr.Validation("invalid topic_id"))
			return
		}
		topicID = &id
	}
	limit, offset := page(c)
	out, err := ah.admin.ListQuestions(c.Request.Context(), topicID, limit, offset)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/admin/topics
func (ah *AdminHandler) ListTopics(c *gin.Context) {
	topics, err := ah.admin.ListTopics(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

// POST /api/admin/sections
func (ah *AdminHandler) CreateSection(c *gin.Context) {
	var req services.SectionInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	sec, err := ah.admin.CreateSection(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"section": sec})
}

// GET /api/admin/sections
func (ah *AdminHandler) ListSections(c *gin.Context) {
	sections, err := ah.admin.ListSections(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sections": sections})
}

// POST /api/admin/tests
func (ah *AdminHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	out, err := ah.admin.CreateTest(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// PATCH /api/admin/tests/:id/status
func (ah *AdminHandler) SetTestStatus(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if req.IsActive == nil {
		response.RespondError(c, apierr.Validation("is_active is required"))
		return
	}
	test, err := ah.admin.SetTestActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": test})
}

// GET /api/admin/users
func (ah *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := page(c)
	out, err := ah.admin.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/admin/users/:id/reports
func (ah *AdminHandler) UserReports(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	out, err := ah.admin.UserReports(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out)
}
