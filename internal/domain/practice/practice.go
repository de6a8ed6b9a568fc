package practice

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/domain/attempt"
	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceLLM      = "llm"
	SourceTemplate = "template"
	SourceVariant  = "variant"
)

// AIPracticeSession is an immutable batch of questions generated from one attempt's mistakes.
type AIPracticeSession struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID                   `gorm:"type:uuid;not null;index:idx_ai_session_user_attempt,priority:1" json:"user_id"`
	User              *user.User                  `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	OriginalAttemptID uuid.UUID                   `gorm:"type:uuid;not null;index:idx_ai_session_user_attempt,priority:2;column:original_attempt_id" json:"original_attempt_id"`
	OriginalAttempt   *attempt.Attempt            `gorm:"constraint:OnDelete:CASCADE;foreignKey:OriginalAttemptID;references:ID" json:"-"`
	SourceQuestionIDs datatypes.JSONSlice[string] `gorm:"column:source_question_ids" json:"source_question_ids"`
	TotalGenerated    int                         `gorm:"not null;column:total_generated" json:"total_generated"`
	FromLLM           int                         `gorm:"not null;column:from_llm" json:"from_llm"`
	FromTemplates     int                         `gorm:"not null;column:from_templates" json:"from_templates"`
	Variants          int                         `gorm:"not null;column:variants" json:"variants"`
	Model             string                      `gorm:"column:model" json:"model"`
	CreatedAt         time.Time                   `gorm:"not null;index" json:"created_at"`
}

func (AIPracticeSession) TableName() string { return "ai_practice_session" }

func (s *AIPracticeSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type AIGeneratedQuestion struct {
	ID               uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        uuid.UUID                           `gorm:"type:uuid;not null;index;column:session_id" json:"session_id"`
	Session          *AIPracticeSession                  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"-"`
	QuestionText     string                              `gorm:"not null;column:question_text" json:"question_text"`
	Options          datatypes.JSONType[catalog.Options] `gorm:"not null;column:options" json:"options"`
	CorrectOption    string                              `gorm:"size:1;not null;column:correct_option" json:"correct_option"`
	Topic            string                              `gorm:"not null;column:topic" json:"topic"`
	NegativeMark     float64                             `gorm:"not null;column:negative_mark" json:"negative_mark"`
	TimeLimitSeconds int                                 `gorm:"not null;column:time_limit_seconds" json:"time_limit_seconds"`
	SequenceOrder    int                                 `gorm:"not null;column:sequence_order" json:"sequence_order"`
	Source           string                              `gorm:"not null;column:source" json:"source"`
	CreatedAt        time.Time                           `gorm:"not null" json:"created_at"`
}

func (AIGeneratedQuestion) TableName() string { return "ai_generated_question" }

func (q *AIGeneratedQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type AIPracticeAttempt struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *user.User         `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	SessionID     uuid.UUID          `gorm:"type:uuid;not null;index;column:session_id" json:"session_id"`
	Session       *AIPracticeSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"-"`
	Status        string             `gorm:"not null;index;column:status" json:"status"`
	StartedAt     time.Time          `gorm:"not null;column:started_at" json:"started_at"`
	FinishedAt    *time.Time         `gorm:"column:finished_at" json:"finished_at,omitempty"`
	attempt.Stats `gorm:"embedded"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (AIPracticeAttempt) TableName() string { return "ai_practice_attempt" }

func (a *AIPracticeAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *AIPracticeAttempt) Completed() bool { return a != nil && a.Status == attempt.StatusCompleted }

type AIPracticeAnswer struct {
	ID               uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	AIAttemptID      uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_ai_answer_attempt_question,priority:1;column:ai_attempt_id" json:"ai_attempt_id"`
	AIAttempt        *AIPracticeAttempt   `gorm:"constraint:OnDelete:CASCADE;foreignKey:AIAttemptID;references:ID" json:"-"`
	AIQuestionID     uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_ai_answer_attempt_question,priority:2;column:ai_question_id" json:"ai_question_id"`
	AIQuestion       *AIGeneratedQuestion `gorm:"constraint:OnDelete:CASCADE;foreignKey:AIQuestionID;references:ID" json:"-"`
	SelectedOption   *string              `gorm:"size:1;column:selected_option" json:"selected_option"`
	IsCorrect        bool                 `gorm:"not null;column:is_correct" json:"is_correct"`
	MarksObtained    float64              `gorm:"not null;column:marks_obtained" json:"marks_obtained"`
	TimeTakenSeconds int                  `gorm:"not null;column:time_taken_seconds" json:"time_taken_seconds"`
	AnsweredAt       time.Time            `gorm:"not null;column:answered_at" json:"answered_at"`
	CreatedAt        time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"not null" json:"updated_at"`
}

func (AIPracticeAnswer) TableName() string { return "ai_practice_answer" }

func (a *AIPracticeAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
