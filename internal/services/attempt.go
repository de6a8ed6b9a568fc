package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/data/repos"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"github.com/yungbote/examgenius-backend/internal/scoring"
	"gorm.io/gorm"
)

// TimingConfig controls answer-key exposure and server-side time limits.
type TimingConfig struct {
	ExposeAnswerKey  bool
	EnforceTimeLimit bool
	TimeLimitGrace   time.Duration
}

type AttemptQuestion struct {
	ID               uuid.UUID     `json:"id"`
	QuestionText     string        `json:"question_text"`
	Options          types.Options `json:"options"`
	Topic            string        `json:"topic"`
	SectionID        *uuid.UUID    `json:"section_id,omitempty"`
	SequenceOrder    int           `json:"sequence_order"`
	NegativeMark     float64       `json:"negative_mark"`
	TimeLimitSeconds int           `json:"time_limit_seconds"`
	CorrectOption    string        `json:"correct_option,omitempty"`
}

type StartedAttempt struct {
	AttemptID       uuid.UUID         `json:"attempt_id"`
	TestID          uuid.UUID         `json:"test_id"`
	TestTitle       string            `json:"test_title"`
	StartedAt       time.Time         `json:"started_at"`
	DurationMinutes int               `json:"duration_minutes"`
	ExpiresAt       *time.Time        `json:"expires_at,omitempty"`
	Questions       []AttemptQuestion `json:"questions"`
	TotalQuestions  int               `json:"total_questions"`
}

type SubmitAnswerInput struct {
	QuestionID       uuid.UUID `json:"question_id"`
	SelectedOption   *string   `json:"selected_option"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
}

type SubmitResult struct {
	IsCorrect     bool    `json:"is_correct"`
	CorrectOption string  `json:"correct_option"`
	MarksObtained float64 `json:"marks_obtained"`
}

type FinishResult struct {
	AttemptID        uuid.UUID  `json:"attempt_id"`
	Status           string     `json:"status"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	AlreadyCompleted bool       `json:"already_completed"`
	types.AttemptStats
}

type AttemptReport struct {
	Attempt      *types.Attempt       `json:"attempt"`
	TestTitle    string               `json:"test_title"`
	Answers      []types.AnswerDetail `json:"answers"`
	TopicSummary []TopicSummary       `json:"topic_summary"`
}

type AttemptService interface {
	Start(ctx context.Context, testID uuid.UUID) (*StartedAttempt, error)
	SubmitAnswer(ctx context.Context, attemptID uuid.UUID, in SubmitAnswerInput) (*SubmitResult, error)
	Finish(ctx context.Context, attemptID uuid.UUID) (*FinishResult, error)
	Report(ctx context.Context, attemptID uuid.UUID) (*AttemptReport, error)
	ListCompleted(ctx context.Context, limit, offset int) ([]repos.AttemptListItem, error)
}

type attemptService struct {
	db          *gorm.DB
	log         *logger.Logger
	testRepo    repos.TestRepo
	attemptRepo repos.AttemptRepo
	answerRepo  repos.AnswerRepo
	cfg         TimingConfig
	now         Clock
}

func NewAttemptService(
	db *gorm.DB,
	log *logger.Logger,
	testRepo repos.TestRepo,
	attemptRepo repos.AttemptRepo,
	answerRepo repos.AnswerRepo,
	cfg TimingConfig,
	clock Clock,
) AttemptService {
	return &attemptService{
		db:          db,
		log:         log.With("service", "AttemptService"),
		testRepo:    testRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		cfg:         cfg,
		now:         orSystemClock(clock),
	}
}

var errAttemptInProgress = apierr.Conflict("an attempt for this test is already in progress")

func (s *attemptService) Start(ctx context.Context, testID uuid.UUID) (*StartedAttempt, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var out *StartedAttempt
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		test, err := s.testRepo.GetActiveByID(dbc, testID)
		if err != nil {
			return apierr.FromDB("load test", err, "test not found or inactive")
		}
		existing, err := s.attemptRepo.FindInProgress(dbc, uid, testID)
		if err != nil {
			return apierr.FromDB("find attempt", err, "")
		}
		if existing != nil {
			return errAttemptInProgress
		}
		tqs, err := s.testRepo.ListQuestions(dbc, testID)
		if err != nil {
			return apierr.FromDB("load test questions", err, "")
		}

		a := &types.Attempt{
			UserID:    uid,
			TestID:    testID,
			Status:    types.AttemptInProgress,
			StartedAt: s.now(),
		}
		if err := s.attemptRepo.Create(dbc, a); err != nil {
			if apierr.IsUniqueViolation(err) {
				return errAttemptInProgress
			}
			return apierr.Internal("create attempt", err)
		}

		out = &StartedAttempt{
			AttemptID:       a.ID,
			TestID:          test.ID,
			TestTitle:       test.Title,
			StartedAt:       a.StartedAt,
			DurationMinutes: test.DurationMinutes,
			Questions:       make([]AttemptQuestion, 0, len(tqs)),
		}
		if s.cfg.EnforceTimeLimit {
			expires := a.StartedAt.Add(time.Duration(test.DurationMinutes) * time.Minute)
			out.ExpiresAt = &expires
		}
		for _, tq := range tqs {
			if tq.Question == nil {
				continue
			}
			out.Questions = append(out.Questions, s.attemptQuestion(tq))
		}
		out.TotalQuestions = len(out.Questions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Attempt started", "attempt_id", out.AttemptID, "test_id", testID, "user_id", uid)
	return out, nil
}

func (s *attemptService) attemptQuestion(tq *types.TestQuestion) AttemptQuestion {
	q := tq.Question
	aq := AttemptQuestion{
		ID:               q.ID,
		QuestionText:     q.QuestionText,
		Options:          q.Options.Data(),
		SectionID:        tq.SectionID,
		SequenceOrder:    tq.SequenceOrder,
		NegativeMark:     q.NegativeMark,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
	if q.Topic != nil {
		aq.Topic = q.Topic.Name
	}
	if s.cfg.ExposeAnswerKey {
		aq.CorrectOption = q.CorrectOption
	}
	return aq
}

func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID uuid.UUID, in SubmitAnswerInput) (*SubmitResult, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := normalizeSelection(in.SelectedOption)
	if err != nil {
		return nil, err
	}
	if in.QuestionID == uuid.Nil {
		return nil, apierr.Validation("question_id is required")
	}
	if in.TimeTakenSeconds < 0 {
		return nil, apierr.Validation("time_taken_seconds cannot be negative")
	}

	var out *SubmitResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		a, err := s.attemptRepo.GetForUser(dbc, attemptID, uid)
		if err != nil {
			return apierr.FromDB("load attempt", err, "attempt not found")
		}
		if a.Completed() {
			return apierr.Conflict("attempt already completed")
		}
		q, err := s.testRepo.GetQuestionInTest(dbc, a.TestID, in.QuestionID)
		if err != nil {
			return apierr.FromDB("load question", err, "question not found in this test")
		}
		now := s.now()
		if s.cfg.EnforceTimeLimit {
			test, err := s.testRepo.GetByID(dbc, a.TestID)
			if err != nil {
				return apierr.FromDB("load test", err, "test not found")
			}
			limit := time.Duration(test.DurationMinutes) * time.Minute
			if now.After(deadline(a.StartedAt, limit, s.cfg.TimeLimitGrace)) {
				return apierr.Conflict("time limit for this attempt has expired")
			}
		}

		isCorrect, marks := scoring.SubmitMarks(selected, q.CorrectOption, q.NegativeMark)
		row := &types.Answer{
			AttemptID:        a.ID,
			QuestionID:       q.ID,
			SelectedOption:   selected,
			IsCorrect:        isCorrect,
			MarksObtained:    marks,
			TimeTakenSeconds: in.TimeTakenSeconds,
			AnsweredAt:       now,
		}
		if err := s.answerRepo.Upsert(dbc, row); err != nil {
			return apierr.FromDB("save answer", err, "")
		}
		out = &SubmitResult{IsCorrect: isCorrect, CorrectOption: q.CorrectOption, MarksObtained: marks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *attemptService) Finish(ctx context.Context, attemptID uuid.UUID) (*FinishResult, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var out *FinishResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		a, err := s.attemptRepo.GetForUser(dbc, attemptID, uid)
		if err != nil {
			return apierr.FromDB("load attempt", err, "attempt not found")
		}
		if a.Completed() {
			out = finishedResult(a, true)
			return nil
		}

		answers, err := s.answerRepo.ListForTest(dbc, a.ID, a.TestID)
		if err != nil {
			return apierr.FromDB("load answers", err, "")
		}
		total, err := s.testRepo.CountQuestions(dbc, a.TestID)
		if err != nil {
			return apierr.FromDB("count questions", err, "")
		}
		marks := make([]scoring.Mark, 0, len(answers))
		for _, ans := range answers {
			marks = append(marks, scoring.Mark{
				Answered:         ans.SelectedOption != nil,
				Correct:          ans.IsCorrect,
				Marks:            ans.MarksObtained,
				TimeTakenSeconds: ans.TimeTakenSeconds,
			})
		}
		stats := toAttemptStats(scoring.Compute(int(total), marks))
		finishedAt := s.now()

		rows, err := s.attemptRepo.MarkCompleted(dbc, a.ID, stats, finishedAt)
		if err != nil {
			return apierr.FromDB("complete attempt", err, "")
		}
		if rows == 0 {
			// another request completed it first
			winner, err := s.attemptRepo.GetByID(dbc, a.ID)
			if err != nil {
				return apierr.FromDB("reload attempt", err, "attempt not found")
			}
			out = finishedResult(winner, true)
			return nil
		}
		a.Status = types.AttemptCompleted
		a.FinishedAt = &finishedAt
		a.Stats = stats
		out = finishedResult(a, false)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.AlreadyCompleted {
		s.log.Info("Attempt finished", "attempt_id", attemptID, "score", out.Score, "user_id", uid)
	}
	return out, nil
}

func finishedResult(a *types.Attempt, already bool) *FinishResult {
	return &FinishResult{
		AttemptID:        a.ID,
		Status:           a.Status,
		FinishedAt:       a.FinishedAt,
		AlreadyCompleted: already,
		AttemptStats:     a.Stats,
	}
}

func (s *attemptService) Report(ctx context.Context, attemptID uuid.UUID) (*AttemptReport, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	a, err := s.attemptRepo.GetForUser(dbc, attemptID, uid)
	if err != nil {
		return nil, apierr.FromDB("load attempt", err, "completed attempt not found")
	}
	if !a.Completed() {
		return nil, apierr.NotFound("completed attempt not found")
	}
	test, err := s.testRepo.GetByID(dbc, a.TestID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.FromDB("load test", err, "")
	}
	details, err := s.answerRepo.ReportDetails(dbc, a.ID, a.TestID)
	if err != nil {
		return nil, apierr.FromDB("load report", err, "")
	}
	if details == nil {
		details = []types.AnswerDetail{}
	}
	report := &AttemptReport{Attempt: a, Answers: details, TopicSummary: summarizeTopics(details)}
	if test != nil {
		report.TestTitle = test.Title
	}
	return report, nil
}

func (s *attemptService) ListCompleted(ctx context.Context, limit, offset int) ([]repos.AttemptListItem, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset = pageBounds(limit, offset)
	items, err := s.attemptRepo.ListCompletedByUser(dbctx.New(ctx), uid, limit, offset)
	if err != nil {
		return nil, apierr.FromDB("list attempts", err, "")
	}
	if items == nil {
		items = []repos.AttemptListItem{}
	}
	return items, nil
}
