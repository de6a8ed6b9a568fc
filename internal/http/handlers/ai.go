package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yungbote/examgenius-backend/internal/http/response"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type AIHandler struct {
	generation services.GenerationService
}

func NewAIHandler(generation services.GenerationService) *AIHandler {
	return &AIHandler{generation: generation}
}

// POST /api/ai/generate-similar
func (h *AIHandler) GenerateSimilar(c *gin.Context) {
	var req services.GenerateInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	out, err := h.generation.GenerateSimilar(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/ai/session/:id
func (h *AIHandler) GetSession(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	session, err := h.generation.GetSession(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// GET /api/ai/history
func (h *AIHandler) History(c *gin.Context) {
	limit, offset := page(c)
	sessions, err := h.generation.History(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}
