package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/http/response"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type AttemptHandler struct {
	attempts services.AttemptService
}

func NewAttemptHandler(attempts services.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// statistics is the finish payload shared by tests and AI practice.
func statistics(s types.AttemptStats) gin.H {
	return gin.H{
		"total_questions":       s.TotalQuestions,
		"correct_answers":       s.CorrectAnswers,
		"incorrect_answers":     s.IncorrectAnswers,
		"unanswered":            s.Unanswered,
		"total_marks":           s.TotalMarks,
		"avg_time_per_question": s.AvgTimePerQuestion,
	}
}

// POST /api/attempts
func (ah *AttemptHandler) Start(c *gin.Context) {
	var req struct {
		TestID uuid.UUID `json:"test_id"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if req.TestID == uuid.Nil {
		response.RespondError(c, apierr.Validation("test_id is required"))
		return
	}
	started, err := ah.attempts.Start(c.Request.Context(), req.TestID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, started)
}

// POST /api/attempts/:id/answer
func (ah *AttemptHandler) SubmitAnswer(c *gin.Context) {
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
	res, err := ah.attempts.SubmitAnswer(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/attempts/:id/finish
func (ah *AttemptHandler) Finish(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := ah.attempts.Finish(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"attempt_id":        res.AttemptID,
		"status":            res.Status,
		"finished_at":       res.FinishedAt,
		"already_completed": res.AlreadyCompleted,
		"score":             res.Score,
		"statistics":        statistics(res.AttemptStats),
	})
}

// GET /api/attempts/:id/report
func (ah *AttemptHandler) Report(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	report, err := ah.attempts.Report(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, report)
}

// GET /api/attempts
func (ah *AttemptHandler) List(c *gin.Context) {
	limit, offset := page(c)
	items, err := ah.attempts.ListCompleted(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": items})
}
