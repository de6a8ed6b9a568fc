package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/examgenius-backend/internal/data/repos"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type Repos struct {
	User     repos.UserRepo
	Topic    repos.TopicRepo
	Question repos.QuestionRepo
	Section  repos.SectionRepo
	Test     repos.TestRepo
	Attempt  repos.AttemptRepo
	Answer   repos.AnswerRepo

	PracticeSession   repos.AIPracticeSessionRepo
	GeneratedQuestion repos.AIGeneratedQuestionRepo
	PracticeAttempt   repos.AIPracticeAttemptRepo
	PracticeAnswer    repos.AIPracticeAnswerRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:     repos.NewUserRepo(db, log),
		Topic:    repos.NewTopicRepo(db, log),
		Question: repos.NewQuestionRepo(db, log),
		Section:  repos.NewSectionRepo(db, log),
		Test:     repos.NewTestRepo(db, log),
		Attempt:  repos.NewAttemptRepo(db, log),
		Answer:   repos.NewAnswerRepo(db, log),

		PracticeSession:   repos.NewAIPracticeSessionRepo(db, log),
		GeneratedQuestion: repos.NewAIGeneratedQuestionRepo(db, log),
		PracticeAttempt:   repos.NewAIPracticeAttemptRepo(db, log),
		PracticeAnswer:    repos.NewAIPracticeAnswerRepo(db, log),
	}
}
