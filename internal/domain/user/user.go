package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ExamFrontend  = "Frontend"
	ExamBackend   = "Backend"
	ExamFullStack = "Full Stack"
	ExamOther     = "Other"
)

var ExamTypes = []string{ExamFrontend, ExamBackend, ExamFullStack, ExamOther}

func ValidExamType(s string) bool {
	for _, t := range ExamTypes {
		if t == s {
			return true
		}
	}
	return false
}

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"not null;column:name" json:"name"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash   string    `gorm:"not null;column:password_hash" json:"-"`
	Phone          string    `gorm:"column:phone" json:"phone"`
	WhatsApp       string    `gorm:"column:whatsapp" json:"whatsapp"`
	College        string    `gorm:"column:college" json:"college"`
	Year           string    `gorm:"column:year" json:"year"`
	TargetExamType string    `gorm:"not null;column:target_exam_type" json:"target_exam_type"`

	Class10Percentage *float64 `gorm:"column:class_10_percentage" json:"class_10_percentage"`
	Class10Board      string   `gorm:"column:class_10_board" json:"class_10_board"`
	Class12Percentage *float64 `gorm:"column:class_12_percentage" json:"class_12_percentage"`
	Class12Board      string   `gorm:"column:class_12_board" json:"class_12_board"`

	IsAdmin  bool `gorm:"not null;column:is_admin" json:"is_admin"`
	IsActive bool `gorm:"not null;column:is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
