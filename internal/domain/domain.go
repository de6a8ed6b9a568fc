package domain

import (
	"github.com/yungbote/examgenius-backend/internal/domain/attempt"
	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/domain/practice"
	"github.com/yungbote/examgenius-backend/internal/domain/user"
)

const (
	AttemptInProgress = attempt.StatusInProgress
	AttemptCompleted  = attempt.StatusCompleted

	SourceLLM      = practice.SourceLLM
	SourceTemplate = practice.SourceTemplate
	SourceVariant  = practice.SourceVariant
)

type (
	User = user.User

	Topic        = catalog.Topic
	Question     = catalog.Question
	Options      = catalog.Options
	Section      = catalog.Section
	Test         = catalog.Test
	TestSection  = catalog.TestSection
	TestQuestion = catalog.TestQuestion

	Attempt      = attempt.Attempt
	Answer       = attempt.Answer
	AttemptStats = attempt.Stats
	AnswerDetail = attempt.AnswerDetail

	AIPracticeSession   = practice.AIPracticeSession
	AIGeneratedQuestion = practice.AIGeneratedQuestion
	AIPracticeAttempt   = practice.AIPracticeAttempt
	AIPracticeAnswer    = practice.AIPracticeAnswer
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&User{},
		&Topic{},
		&Question{},
		&Section{},
		&Test{},
		&TestSection{},
		&TestQuestion{},
		&Attempt{},
		&Answer{},
		&AIPracticeSession{},
		&AIGeneratedQuestion{},
		&AIPracticeAttempt{},
		&AIPracticeAnswer{},
	}
}
