package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultNegativeMark       = 2.0
	DefaultTimeLimitSeconds   = 60
	DefaultSectionTimeMinutes = 20
	DefaultTestDuration       = 60
)

type Topic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Topic) TableName() string { return "topic" }

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Question struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID          uuid.UUID                   `gorm:"type:uuid;not null;index" json:"topic_id"`
	Topic            *Topic                      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TopicID;references:ID" json:"topic,omitempty"`
	QuestionText     string                      `gorm:"not null;column:question_text" json:"question_text"`
	Options          datatypes.JSONType[Options] `gorm:"not null;column:options" json:"options"`
	CorrectOption    string                      `gorm:"size:1;not null;column:correct_option" json:"correct_option"`
	NegativeMark     float64                     `gorm:"not null;column:negative_mark" json:"negative_mark"`
	TimeLimitSeconds int                         `gorm:"not null;column:time_limit_seconds" json:"time_limit_seconds"`
	CreatedAt        time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Question) TableName() string { return "question" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type Section struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string    `gorm:"not null;column:name" json:"name"`
	Description        string    `gorm:"column:description" json:"description"`
	DefaultTimeMinutes int       `gorm:"not null;column:default_time_minutes" json:"default_time_minutes"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}

func (Section) TableName() string { return "section" }

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Test struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string     `gorm:"not null;column:title" json:"title"`
	Description     string     `gorm:"column:description" json:"description"`
	DurationMinutes int        `gorm:"not null;column:duration_minutes" json:"duration_minutes"`
	IsActive        bool       `gorm:"not null;index;column:is_active" json:"is_active"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (Test) TableName() string { return "test" }

func (t *Test) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TestSection struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TestID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_test_section,priority:1" json:"test_id"`
	Test          *Test     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TestID;references:ID" json:"-"`
	SectionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_test_section,priority:2" json:"section_id"`
	Section       *Section  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	TimeMinutes   int       `gorm:"not null;column:time_minutes" json:"time_minutes"`
	SequenceOrder int       `gorm:"not null;column:sequence_order" json:"sequence_order"`
}

func (TestSection) TableName() string { return "test_section" }

func (t *TestSection) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TestQuestion struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TestID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_test_question,priority:1" json:"test_id"`
	Test          *Test      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TestID;references:ID" json:"-"`
	QuestionID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_test_question,priority:2" json:"question_id"`
	Question      *Question  `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	SectionID     *uuid.UUID `gorm:"type:uuid;column:section_id" json:"section_id,omitempty"`
	SequenceOrder int        `gorm:"not null;column:sequence_order" json:"sequence_order"`
}

func (TestQuestion) TableName() string { return "test_question" }

func (t *TestQuestion) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
