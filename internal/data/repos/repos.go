package repos

import (
	"github.com/yungbote/examgenius-backend/internal/data/repos/attempt"
	"github.com/yungbote/examgenius-backend/internal/data/repos/catalog"
	"github.com/yungbote/examgenius-backend/internal/data/repos/practice"
	"github.com/yungbote/examgenius-backend/internal/data/repos/user"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type TopicRepo = catalog.TopicRepo
type QuestionRepo = catalog.QuestionRepo
type SectionRepo = catalog.SectionRepo
type TestRepo = catalog.TestRepo

type AttemptRepo = attempt.AttemptRepo
type AnswerRepo = attempt.AnswerRepo

type AIPracticeSessionRepo = practice.SessionRepo
type AIGeneratedQuestionRepo = practice.GeneratedQuestionRepo
type AIPracticeAttemptRepo = practice.PracticeAttemptRepo
type AIPracticeAnswerRepo = practice.PracticeAnswerRepo

type TopicWithCount = catalog.TopicWithCount
type TestSummary = catalog.TestSummary
type AttemptListItem = attempt.AttemptListItem
type AttemptMarks = attempt.AttemptMarks
type TestStats = attempt.TestStats
type UserAttemptStats = attempt.UserAttemptStats
type WrongAnswer = attempt.WrongAnswer
type TopicPerformance = attempt.TopicPerformance

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return catalog.NewTopicRepo(db, baseLog)
}
func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return catalog.NewQuestionRepo(db, baseLog)
}
func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return catalog.NewSectionRepo(db, baseLog)
}
func NewTestRepo(db *gorm.DB, baseLog *logger.Logger) TestRepo {
	return catalog.NewTestRepo(db, baseLog)
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return attempt.NewAttemptRepo(db, baseLog)
}
func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return attempt.NewAnswerRepo(db, baseLog)
}

func NewAIPracticeSessionRepo(db *gorm.DB, baseLog *logger.Logger) AIPracticeSessionRepo {
	return practice.NewSessionRepo(db, baseLog)
}
func NewAIGeneratedQuestionRepo(db *gorm.DB, baseLog *logger.Logger) AIGeneratedQuestionRepo {
	return practice.NewGeneratedQuestionRepo(db, baseLog)
}
func NewAIPracticeAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AIPracticeAttemptRepo {
	return practice.NewPracticeAttemptRepo(db, baseLog)
}
func NewAIPracticeAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AIPracticeAnswerRepo {
	return practice.NewPracticeAnswerRepo(db, baseLog)
}
