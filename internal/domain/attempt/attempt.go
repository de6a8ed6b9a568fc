package attempt

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/domain/user"
	"gorm.io/gorm"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Stats are the aggregates written once an attempt completes.
type Stats struct {
	Score              float64 `gorm:"not null;column:score" json:"score"`
	TotalQuestions     int     `gorm:"not null;column:total_questions" json:"total_questions"`
	CorrectAnswers     int     `gorm:"not null;column:correct_answers" json:"correct_answers"`
	IncorrectAnswers   int     `gorm:"not null;column:incorrect_answers" json:"incorrect_answers"`
	Unanswered         int     `gorm:"not null;column:unanswered" json:"unanswered"`
	TotalMarks         float64 `gorm:"not null;column:total_marks" json:"total_marks"`
	AvgTimePerQuestion float64 `gorm:"not null;column:avg_time_per_question" json:"avg_time_per_question"`
}

type Attempt struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_attempt_user_test,priority:1" json:"user_id"`
	User       *user.User    `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	TestID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_attempt_user_test,priority:2" json:"test_id"`
	Test       *catalog.Test `gorm:"constraint:OnDelete:CASCADE;foreignKey:TestID;references:ID" json:"-"`
	Status     string        `gorm:"not null;index;column:status" json:"status"`
	StartedAt  time.Time     `gorm:"not null;column:started_at" json:"started_at"`
	FinishedAt *time.Time    `gorm:"column:finished_at" json:"finished_at,omitempty"`
	Stats      `gorm:"embedded"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Attempt) TableName() string { return "attempt" }

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Attempt) Completed() bool { return a != nil && a.Status == StatusCompleted }

type Answer struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_answer_attempt_question,priority:1;column:attempt_id" json:"attempt_id"`
	Attempt          *Attempt          `gorm:"constraint:OnDelete:CASCADE;foreignKey:AttemptID;references:ID" json:"-"`
	QuestionID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_answer_attempt_question,priority:2;column:question_id" json:"question_id"`
	Question         *catalog.Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"-"`
	SelectedOption   *string           `gorm:"size:1;column:selected_option" json:"selected_option"`
	IsCorrect        bool              `gorm:"not null;column:is_correct" json:"is_correct"`
	MarksObtained    float64           `gorm:"not null;column:marks_obtained" json:"marks_obtained"`
	TimeTakenSeconds int               `gorm:"not null;column:time_taken_seconds" json:"time_taken_seconds"`
	AnsweredAt       time.Time         `gorm:"not null;column:answered_at" json:"answered_at"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null" json:"updated_at"`
}

func (Answer) TableName() string { return "answer" }

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
