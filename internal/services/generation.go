package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/data/repos"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"github.com/yungbote/examgenius-backend/internal/practicegen"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PracticeGenerator produces practice questions and never fails.
type PracticeGenerator interface {
	Generate(ctx context.Context, sources []practicegen.Source, n int) practicegen.Result
}

type GenerateInput struct {
	WrongQuestionIDs  []uuid.UUID `json:"wrong_question_ids"`
	OriginalAttemptID uuid.UUID   `json:"original_attempt_id"`
	MaxQuestions      *int        `json:"max_questions"`
}

type GeneratedSession struct {
	SessionID             uuid.UUID          `json:"session_id"`
	GeneratedQuestions    []PracticeQuestion `json:"generated_questions"`
	TotalGenerated        int                `json:"total_generated"`
	BasedOnWrongQuestions int                `json:"based_on_wrong_questions"`
	FromLLM               int                `json:"from_llm"`
	FromTemplates         int                `json:"from_templates"`
	Variants              int                `json:"variants"`
}

type SessionDetail struct {
	*types.AIPracticeSession
	Questions []PracticeQuestion `json:"questions"`
}

type GenerationService interface {
	GenerateSimilar(ctx context.Context, in GenerateInput) (*GeneratedSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*SessionDetail, error)
	History(ctx context.Context, limit, offset int) ([]*types.AIPracticeSession, error)
}

type generationService struct {
	db           *gorm.DB
	log          *logger.Logger
	attemptRepo  repos.AttemptRepo
	answerRepo   repos.AnswerRepo
	sessionRepo  repos.AIPracticeSessionRepo
	questionRepo repos.AIGeneratedQuestionRepo
	generator    PracticeGenerator
	exposeKey    bool
}

func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	attemptRepo repos.AttemptRepo,
	answerRepo repos.AnswerRepo,
	sessionRepo repos.AIPracticeSessionRepo,
	questionRepo repos.AIGeneratedQuestionRepo,
	generator PracticeGenerator,
	exposeAnswerKey bool,
) GenerationService {
	return &generationService{
		db:           db,
		log:          log.With("service", "GenerationService"),
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		generator:    generator,
		exposeKey:    exposeAnswerKey,
	}
}

func (s *generationService) GenerateSimilar(ctx context.Context, in GenerateInput) (*GeneratedSession, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.WrongQuestionIDs) == 0 {
		return nil, apierr.Validation("wrong_question_ids must be a non-empty array")
	}
	if in.OriginalAttemptID == uuid.Nil {
		return nil, apierr.Validation("original_attempt_id is required")
	}
	n := practicegen.DefaultCount
	if in.MaxQuestions != nil {
		n = *in.MaxQuestions
		if n < 1 || n > practicegen.MaxCount {
			return nil, apierr.Validation("max_questions must be between 1 and %d", practicegen.MaxCount)
		}
	}

	dbc := dbctx.New(ctx)
	orig, err := s.attemptRepo.GetForUser(dbc, in.OriginalAttemptID, uid)
	if err != nil {
		return nil, apierr.FromDB("load attempt", err, "completed attempt not found")
	}
	if !orig.Completed() {
		return nil, apierr.NotFound("completed attempt not found")
	}
	wrong, err := s.answerRepo.WrongAnswers(dbc, orig.ID, in.WrongQuestionIDs, practicegen.MaxSources)
	if err != nil {
		return nil, apierr.FromDB("load wrong answers", err, "")
	}
	if len(wrong) == 0 {
		return nil, apierr.Validation("no incorrect answers found for the given questions")
	}

	sources := make([]practicegen.Source, 0, len(wrong))
	sourceIDs := make([]string, 0, len(wrong))
	for _, w := range wrong {
		opts := w.Options.Data()
		sources = append(sources, practicegen.Source{
			QuestionID:    w.QuestionID,
			Topic:         w.Topic,
			QuestionText:  w.QuestionText,
			WrongChoice:   opts.Get(w.SelectedOption),
			CorrectChoice: opts.Get(w.CorrectOption),
		})
		sourceIDs = append(sourceIDs, w.QuestionID.String())
	}

	// The model call stays outside the transaction.
	res := s.generator.Generate(ctx, sources, n)

	session := &types.AIPracticeSession{
		UserID:            uid,
		OriginalAttemptID: orig.ID,
		SourceQuestionIDs: datatypes.JSONSlice[string](sourceIDs),
		TotalGenerated:    len(res.Questions),
		FromLLM:           res.FromLLM,
		FromTemplates:     res.FromTemplates,
		Variants:          res.Variants,
		Model:             res.Model,
	}
	rows := make([]*types.AIGeneratedQuestion, 0, len(res.Questions))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		if err := s.sessionRepo.Create(txc, session); err != nil {
			return err
		}
		for i, q := range res.Questions {
			rows = append(rows, &types.AIGeneratedQuestion{
				SessionID:        session.ID,
				QuestionText:     q.QuestionText,
				Options:          datatypes.NewJSONType(q.Options),
				CorrectOption:    q.CorrectOption,
				Topic:            q.Topic,
				NegativeMark:     q.NegativeMark,
				TimeLimitSeconds: q.TimeLimitSeconds,
				SequenceOrder:    i + 1,
				Source:           q.Origin,
			})
		}
		return s.questionRepo.CreateMany(txc, rows)
	})
	if err != nil {
		return nil, apierr.FromDB("store practice session", err, "")
	}

	s.log.Info("Practice session generated",
		"session_id", session.ID,
		"user_id", uid,
		"total", len(rows),
		"from_llm", res.FromLLM,
		"from_templates", res.FromTemplates,
		"variants", res.Variants,
	)
	return &GeneratedSession{
		SessionID:             session.ID,
		GeneratedQuestions:    newPracticeQuestions(rows, s.exposeKey),
		TotalGenerated:        len(rows),
		BasedOnWrongQuestions: len(wrong),
		FromLLM:               res.FromLLM,
		FromTemplates:         res.FromTemplates,
		Variants:              res.Variants,
	}, nil
}

func (s *generationService) GetSession(ctx context.Context, id uuid.UUID) (*SessionDetail, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	session, err := s.sessionRepo.GetForUser(dbc, id, uid)
	if err != nil {
		return nil, apierr.FromDB("load practice session", err, "AI practice session not found")
	}
	questions, err := s.questionRepo.ListBySession(dbc, session.ID)
	if err != nil {
		return nil, apierr.FromDB("load practice questions", err, "")
	}
	return &SessionDetail{AIPracticeSession: session, Questions: newPracticeQuestions(questions, s.exposeKey)}, nil
}

func (s *generationService) History(ctx context.Context, limit, offset int) ([]*types.AIPracticeSession, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset = pageBounds(limit, offset)
	sessions, err := s.sessionRepo.ListByUser(dbctx.New(ctx), uid, limit, offset)
	if err != nil {
		return nil, apierr.FromDB("list practice sessions", err, "")
	}
	if sessions == nil {
		sessions = []*types.AIPracticeSession{}
	}
	return sessions, nil
}
