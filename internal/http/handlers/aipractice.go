package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/http/response"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type AIPracticeHandler struct {
	practice services.AIPracticeService
}

func NewAIPracticeHandler(practice services.AIPracticeService) *AIPracticeHandler {
	return &AIPracticeHandler{practice: practice}
}

// POST /api/ai-practice
func (ph *AIPracticeHandler) Start(c *gin.Context) {
	var req struct {
		OriginalAttemptID uuid.UUID `json:"original_attempt_id"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if req.OriginalAttemptID == uuid.Nil {
		response.RespondError(c, apierr.Validation("original_attempt_id is required"))
		return
	}
	started, err := ph.practice.Start(c.Request.Context(), req.OriginalAttemptID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, started)
}

// GET /api/ai-practice/:id/questions
func (ph *AIPracticeHandler) Questions(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	qs, err := ph.practice.Questions(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, qs)
}

// POST /api/ai-practice/:id/answer
func (ph *AIPracticeHandler) SubmitAnswer(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req services.SubmitAnswerInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := ph.practice.SubmitAnswer(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/ai-practice/:id/finish
func (ph *AIPracticeHandler) Finish(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := ph.practice.Finish(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"ai_attempt_id":       res.AIAttemptID,
		"status":              res.Status,
		"finished_at":         res.FinishedAt,
		"already_completed":   res.AlreadyCompleted,
		"score":               res.Score,
		"statistics":          statistics(res.AttemptStats),
		"improvement_message": res.ImprovementMessage,
	})
}

// GET /api/ai-practice/:id/report
func (ph *AIPracticeHandler) Report(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	report, err := ph.practice.Report(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, report)
}

// GET /api/ai-practice/user/all
func (ph *AIPracticeHandler) List(c *gin.Context) {
	limit, offset := page(c)
	items, err := ph.practice.ListCompleted(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": items})
}
