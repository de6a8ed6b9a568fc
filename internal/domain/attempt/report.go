package attempt

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"gorm.io/datatypes"
)

// AnswerDetail is one question of a report joined with the caller's answer, if any.
type AnswerDetail struct {
	QuestionNumber   int                                 `json:"question_number"`
	QuestionID       uuid.UUID                           `json:"question_id"`
	QuestionText     string                              `json:"question_text"`
	Options          datatypes.JSONType[catalog.Options] `json:"options"`
	CorrectOption    string                              `json:"correct_option"`
	Topic            string                              `json:"topic"`
	SelectedOption   *string                             `json:"selected_option"`
	IsCorrect        bool                                `json:"is_correct"`
	MarksObtained    float64                             `json:"marks_obtained"`
	TimeTakenSeconds int                                 `json:"time_taken_seconds"`
	AnsweredAt       *time.Time                          `json:"answered_at,omitempty"`
}

func (d AnswerDetail) Answered() bool { return d.SelectedOption != nil }
