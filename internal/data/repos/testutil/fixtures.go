package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:             uuid.New(),
		Name:           "Test User",
		Email:          email,
		PasswordHash:   "x",
		TargetExamType: "Full Stack",
		IsActive:       true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, email)
	if err := tx.WithContext(ctx).Model(u).Update("is_admin", true).Error; err != nil {
		tb.Fatalf("seed admin: %v", err)
	}
	u.IsAdmin = true
	return u
}

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Topic {
	tb.Helper()
	t := &types.Topic{ID: uuid.New(), Name: name, Description: "Questions related to " + name}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

// SeedQuestion creates a question whose option texts are "<text> A".."<text> D".
func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, topicID uuid.UUID, text, correct string) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:           uuid.New(),
		TopicID:      topicID,
		QuestionText: text,
		Options: datatypes.NewJSONType(types.Options{
			A: text + " A",
			B: text + " B",
			C: text + " C",
			D: text + " D",
		}),
		CorrectOption:    correct,
		NegativeMark:     2.0,
		TimeLimitSeconds: 60,
	}
	if err := tx.WithContext(ctx).Omit("Topic").Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

// SeedTest creates an active test over n fresh questions, each with correct option "A".
func SeedTest(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, n int) (*types.Test, []*types.Question) {
	tb.Helper()
	topic := SeedTopic(tb, ctx, tx, title+" topic "+uuid.NewString()[:8])
	test := &types.Test{
		ID:              uuid.New(),
		Title:           title,
		DurationMinutes: 30,
		IsActive:        true,
	}
	if err := tx.WithContext(ctx).Create(test).Error; err != nil {
		tb.Fatalf("seed test: %v", err)
	}
	qs := make([]*types.Question, 0, n)
	for i := 0; i < n; i++ {
		q := SeedQuestion(tb, ctx, tx, topic.ID, fmt.Sprintf("%s question %d", title, i+1), "A")
		link := &types.TestQuestion{TestID: test.ID, QuestionID: q.ID, SequenceOrder: i + 1}
		if err := tx.WithContext(ctx).Omit("Test", "Question").Create(link).Error; err != nil {
			tb.Fatalf("seed test question: %v", err)
		}
		qs = append(qs, q)
	}
	return test, qs
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, testID uuid.UUID, status string, startedAt time.Time) *types.Attempt {
	tb.Helper()
	a := &types.Attempt{
		ID:        uuid.New(),
		UserID:    userID,
		TestID:    testID,
		Status:    status,
		StartedAt: startedAt,
	}
	if status == types.AttemptCompleted {
		finished := startedAt.Add(10 * time.Minute)
		a.FinishedAt = &finished
	}
	if err := tx.WithContext(ctx).Omit("User", "Test").Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}

func SeedAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, attemptID, questionID uuid.UUID, selected *string, correct bool, marks float64) *types.Answer {
	tb.Helper()
	a := &types.Answer{
		ID:               uuid.New(),
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOption:   selected,
		IsCorrect:        correct,
		MarksObtained:    marks,
		TimeTakenSeconds: 10,
		AnsweredAt:       time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Omit("Attempt", "Question").Create(a).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return a
}

func PtrString(v string) *string { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
