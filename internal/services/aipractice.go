package services

import (
	"context"
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

const DefaultPracticeDuration = 30 * time.Minute

type StartedPractice struct {
	AIAttemptID    uuid.UUID `json:"ai_attempt_id"`
	SessionID      uuid.UUID `json:"session_id"`
	StartedAt      time.Time `json:"started_at"`
	QuestionsCount int64     `json:"questions_count"`
}

type PracticeQuestion struct {
	ID               uuid.UUID     `json:"id"`
	QuestionText     string        `json:"question_text"`
	Options          types.Options `json:"options"`
	Topic            string        `json:"topic"`
	NegativeMark     float64       `json:"negative_mark"`
	TimeLimitSeconds int           `json:"time_limit_seconds"`
	SequenceOrder    int           `json:"sequence_order"`
	Source           string        `json:"source,omitempty"`
	CorrectOption    string        `json:"correct_option,omitempty"`
}

// newPracticeQuestion strips the answer key unless exposeKey is set.
func newPracticeQuestion(q *types.AIGeneratedQuestion, exposeKey bool) PracticeQuestion {
	pq := PracticeQuestion{
		ID:               q.ID,
		QuestionText:     q.QuestionText,
		Options:          q.Options.Data(),
		Topic:            q.Topic,
		NegativeMark:     q.NegativeMark,
		TimeLimitSeconds: q.TimeLimitSeconds,
		SequenceOrder:    q.SequenceOrder,
		Source:           q.Source,
	}
	if exposeKey {
		pq.CorrectOption = q.CorrectOption
	}
	return pq
}

func newPracticeQuestions(rows []*types.AIGeneratedQuestion, exposeKey bool) []PracticeQuestion {
	out := make([]PracticeQuestion, 0, len(rows))
	for _, q := range rows {
		out = append(out, newPracticeQuestion(q, exposeKey))
	}
	return out
}

type PracticeQuestions struct {
	AIAttemptID            uuid.UUID          `json:"ai_attempt_id"`
	SessionID              uuid.UUID          `json:"session_id"`
	Questions              []PracticeQuestion `json:"questions"`
	TotalQuestions         int                `json:"total_questions"`
	DefaultDurationSeconds int                `json:"default_duration_seconds"`
}

type PracticeFinishResult struct {
	AIAttemptID        uuid.UUID  `json:"ai_attempt_id"`
	Status             string     `json:"status"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
	AlreadyCompleted   bool       `json:"already_completed"`
	ImprovementMessage string     `json:"improvement_message"`
	types.AttemptStats
}

type PracticeReport struct {
	Attempt      *types.AIPracticeAttempt `json:"attempt"`
	Answers      []types.AnswerDetail     `json:"answers"`
	TopicSummary []TopicSummary           `json:"topic_summary"`
}

type AIPracticeService interface {
	Start(ctx context.Context, originalAttemptID uuid.UUID) (*StartedPractice, error)
	Questions(ctx context.Context, aiAttemptID uuid.UUID) (*PracticeQuestions, error)
	SubmitAnswer(ctx context.Context, aiAttemptID uuid.UUID, in SubmitAnswerInput) (*SubmitResult, error)
	Finish(ctx context.Context, aiAttemptID uuid.UUID) (*PracticeFinishResult, error)
	Report(ctx context.Context, aiAttemptID uuid.UUID) (*PracticeReport, error)
	ListCompleted(ctx context.Context, limit, offset int) ([]*types.AIPracticeAttempt, error)
}

type aiPracticeService struct {
	db           *gorm.DB
	log          *logger.Logger
	attemptRepo  repos.AttemptRepo
	sessionRepo  repos.AIPracticeSessionRepo
	questionRepo repos.AIGeneratedQuestionRepo
	practiceRepo repos.AIPracticeAttemptRepo
	answerRepo   repos.AIPracticeAnswerRepo
	cfg          TimingConfig
	duration     time.Duration
	now          Clock
}

func NewAIPracticeService(
	db *gorm.DB,
	log *logger.Logger,
	attemptRepo repos.AttemptRepo,
	sessionRepo repos.AIPracticeSessionRepo,
	questionRepo repos.AIGeneratedQuestionRepo,
	practiceRepo repos.AIPracticeAttemptRepo,
	answerRepo repos.AIPracticeAnswerRepo,
	cfg TimingConfig,
	duration time.Duration,
	clock Clock,
) AIPracticeService {
	if duration <= 0 {
		duration = DefaultPracticeDuration
	}
	return &aiPracticeService{
		db:           db,
		log:          log.With("service", "AIPracticeService"),
		attemptRepo:  attemptRepo,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		practiceRepo: practiceRepo,
		answerRepo:   answerRepo,
		cfg:          cfg,
		duration:     duration,
		now:          orSystemClock(clock),
	}
}

func (s *aiPracticeService) Start(ctx context.Context, originalAttemptID uuid.UUID) (*StartedPractice, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var out *StartedPractice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		orig, err := s.attemptRepo.GetForUser(dbc, originalAttemptID, uid)
		if err != nil {
			return apierr.FromDB("load attempt", err, "completed attempt not found")
		}
		if !orig.Completed() {
			return apierr.NotFound("completed attempt not found")
		}
		session, err := s.sessionRepo.LatestForAttempt(dbc, uid, orig.ID)
		if err != nil {
			return apierr.FromDB("load practice session", err, "no AI practice session found for this attempt, generate questions first")
		}
		count, err := s.questionRepo.CountBySession(dbc, session.ID)
		if err != nil {
			return apierr.FromDB("count practice questions", err, "")
		}
		pa := &types.AIPracticeAttempt{
			UserID:    uid,
			SessionID: session.ID,
			Status:    types.AttemptInProgress,
			StartedAt: s.now(),
		}
		if err := s.practiceRepo.Create(dbc, pa); err != nil {
			return apierr.FromDB("create practice attempt", err, "")
		}
		out = &StartedPractice{
			AIAttemptID:    pa.ID,
			SessionID:      session.ID,
			StartedAt:      pa.StartedAt,
			QuestionsCount: count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("AI practice started", "ai_attempt_id", out.AIAttemptID, "session_id", out.SessionID, "user_id", uid)
	return out, nil
}

func (s *aiPracticeService) Questions(ctx context.Context, aiAttemptID uuid.UUID) (*PracticeQuestions, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	pa, err := s.practiceRepo.GetForUser(dbc, aiAttemptID, uid)
	if err != nil {
		return nil, apierr.FromDB("load practice attempt", err, "AI practice attempt not found")
	}
	if pa.Completed() {
		return nil, apierr.Conflict("AI practice session already completed")
	}
	rows, err := s.questionRepo.ListBySession(dbc, pa.SessionID)
	if err != nil {
		return nil, apierr.FromDB("load practice questions", err, "")
	}
	if len(rows) == 0 {
		return nil, apierr.NotFound("no AI questions found in this session, generate questions first")
	}
	out := &PracticeQuestions{
		AIAttemptID:            pa.ID,
		SessionID:              pa.SessionID,
		Questions:              newPracticeQuestions(rows, s.cfg.ExposeAnswerKey),
		TotalQuestions:         len(rows),
		DefaultDurationSeconds: int(s.duration / time.Second),
	}
	return out, nil
}

func (s *aiPracticeService) SubmitAnswer(ctx context.Context, aiAttemptID uuid.UUID, in SubmitAnswerInput) (*SubmitResult, error) {
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
		pa, err := s.practiceRepo.GetForUser(dbc, aiAttemptID, uid)
		if err != nil {
			return apierr.FromDB("load practice attempt", err, "AI practice attempt not found")
		}
		if pa.Completed() {
			return apierr.Conflict("AI practice session already completed")
		}
		q, err := s.questionRepo.GetInSession(dbc, pa.SessionID, in.QuestionID)
		if err != nil {
			return apierr.FromDB("load practice question", err, "AI question not found")
		}
		now := s.now()
		if s.cfg.EnforceTimeLimit && now.After(deadline(pa.StartedAt, s.duration, s.cfg.TimeLimitGrace)) {
			return apierr.Conflict("time limit for this practice session has expired")
		}

		isCorrect, marks := scoring.SubmitMarks(selected, q.CorrectOption, q.NegativeMark)
		row := &types.AIPracticeAnswer{
			AIAttemptID:      pa.ID,
			AIQuestionID:     q.ID,
			SelectedOption:   selected,
			IsCorrect:        isCorrect,
			MarksObtained:    marks,
			TimeTakenSeconds: in.TimeTakenSeconds,
			AnsweredAt:       now,
		}
		if err := s.answerRepo.Upsert(dbc, row); err != nil {
			return apierr.FromDB("save practice answer", err, "")
		}
		out = &SubmitResult{IsCorrect: isCorrect, CorrectOption: q.CorrectOption, MarksObtained: marks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *aiPracticeService) Finish(ctx context.Context, aiAttemptID uuid.UUID) (*PracticeFinishResult, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var out *PracticeFinishResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		pa, err := s.practiceRepo.GetForUser(dbc, aiAttemptID, uid)
		if err != nil {
			return apierr.FromDB("load practice attempt", err, "AI practice attempt not found")
		}
		if pa.Completed() {
			out = practiceFinished(pa, true)
			return nil
		}

		answers, err := s.answerRepo.ListByAttempt(dbc, pa.ID)
		if err != nil {
			return apierr.FromDB("load practice answers", err, "")
		}
		total, err := s.questionRepo.CountBySession(dbc, pa.SessionID)
		if err != nil {
			return apierr.FromDB("count practice questions", err, "")
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

		rows, err := s.practiceRepo.MarkCompleted(dbc, pa.ID, stats, finishedAt)
		if err != nil {
			return apierr.FromDB("complete practice attempt", err, "")
		}
		if rows == 0 {
			winner, err := s.practiceRepo.GetForUser(dbc, pa.ID, uid)
			if err != nil {
				return apierr.FromDB("reload practice attempt", err, "AI practice attempt not found")
			}
			out = practiceFinished(winner, true)
			return nil
		}
		pa.Status = types.AttemptCompleted
		pa.FinishedAt = &finishedAt
		pa.Stats = stats
		out = practiceFinished(pa, false)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.AlreadyCompleted {
		s.log.Info("AI practice finished", "ai_attempt_id", aiAttemptID, "score", out.Score, "user_id", uid)
	}
	return out, nil
}

func practiceFinished(pa *types.AIPracticeAttempt, already bool) *PracticeFinishResult {
	return &PracticeFinishResult{
		AIAttemptID:        pa.ID,
		Status:             pa.Status,
		FinishedAt:         pa.FinishedAt,
		AlreadyCompleted:   already,
		ImprovementMessage: ImprovementMessage(pa.Score),
		AttemptStats:       pa.Stats,
	}
}

// ImprovementMessage is the feedback line shown after a practice session.
func ImprovementMessage(score float64) string {
	switch {
	case score >= 70:
		return "Excellent! You've improved significantly on these concepts!"
	case score > 0:
		return "Good practice! Keep working on these topics for better understanding."
	}
	return "No answers submitted. Practice more to improve your skills!"
}

func (s *aiPracticeService) Report(ctx context.Context, aiAttemptID uuid.UUID) (*PracticeReport, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	pa, err := s.practiceRepo.GetForUser(dbc, aiAttemptID, uid)
	if err != nil {
		return nil, apierr.FromDB("load practice attempt", err, "completed AI practice attempt not found")
	}
	if !pa.Completed() {
		return nil, apierr.NotFound("completed AI practice attempt not found")
	}
	details, err := s.answerRepo.ReportDetails(dbc, pa.ID, pa.SessionID)
	if err != nil {
		return nil, apierr.FromDB("load practice report", err, "")
	}
	if details == nil {
		details = []types.AnswerDetail{}
	}
	return &PracticeReport{Attempt: pa, Answers: details, TopicSummary: summarizeTopics(details)}, nil
}

func (s *aiPracticeService) ListCompleted(ctx context.Context, limit, offset int) ([]*types.AIPracticeAttempt, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset = pageBounds(limit, offset)
	items, err := s.practiceRepo.ListCompletedByUser(dbctx.New(ctx), uid, limit, offset)
	if err != nil {
		return nil, apierr.FromDB("list practice attempts", err, "")
	}
	if items == nil {
		items = []*types.AIPracticeAttempt{}
	}
	return items, nil
}
