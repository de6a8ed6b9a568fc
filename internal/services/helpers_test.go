package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/examgenius-backend/internal/data/repos"
	"github.com/yungbote/examgenius-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/ctxutil"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type env struct {
	db    *gorm.DB
	log   *logger.Logger
	clock *fakeClock

	users     repos.UserRepo
	topics    repos.TopicRepo
	questions repos.QuestionRepo
	sections  repos.SectionRepo
	tests     repos.TestRepo
	attempts  repos.AttemptRepo
	answers   repos.AnswerRepo
	sessions  repos.AIPracticeSessionRepo
	aiqs      repos.AIGeneratedQuestionRepo
	practices repos.AIPracticeAttemptRepo
	paAnswers repos.AIPracticeAnswerRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &env{
		db:        db,
		log:       log,
		clock:     newFakeClock(),
		users:     repos.NewUserRepo(db, log),
		topics:    repos.NewTopicRepo(db, log),
		questions: repos.NewQuestionRepo(db, log),
		sections:  repos.NewSectionRepo(db, log),
		tests:     repos.NewTestRepo(db, log),
		attempts:  repos.NewAttemptRepo(db, log),
		answers:   repos.NewAnswerRepo(db, log),
		sessions:  repos.NewAIPracticeSessionRepo(db, log),
		aiqs:      repos.NewAIGeneratedQuestionRepo(db, log),
		practices: repos.NewAIPracticeAttemptRepo(db, log),
		paAnswers: repos.NewAIPracticeAnswerRepo(db, log),
	}
}

func (e *env) attemptService(cfg TimingConfig) AttemptService {
	return NewAttemptService(e.db, e.log, e.tests, e.attempts, e.answers, cfg, e.clock.Now)
}

func (e *env) practiceService(cfg TimingConfig) AIPracticeService {
	return NewAIPracticeService(e.db, e.log, e.attempts, e.sessions, e.aiqs, e.practices, e.paAnswers, cfg, 0, e.clock.Now)
}

func asUser(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:  u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	})
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
	}
	if ae.Status != status {
		t.Fatalf("status: want %d got %d (%v)", status, ae.Status, err)
	}
}

func ptr[T any](v T) *T { return &v }
