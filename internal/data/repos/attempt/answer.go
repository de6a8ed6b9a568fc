package attempt

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	attemptdomain "github.com/yungbote/examgenius-backend/internal/domain/attempt"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

// WrongAnswer is a question the user answered incorrectly, with the choices involved.
type WrongAnswer struct {
	QuestionID     uuid.UUID                         `json:"question_id"`
	QuestionText   string                            `json:"question_text"`
	Options        datatypes.JSONType[types.Options] `json:"options"`
	CorrectOption  string                            `json:"correct_option"`
	SelectedOption string                            `json:"selected_option"`
	Topic          string                            `json:"topic"`
}

type TopicPerformance struct {
	Topic          string  `json:"topic"`
	TotalQuestions int64   `json:"total_questions"`
	Correct        int64   `json:"correct"`
	Incorrect      int64   `json:"incorrect"`
	Unanswered     int64   `json:"unanswered"`
	TotalMarks     float64 `json:"total_marks"`
}

type AnswerRepo interface {
	Upsert(dbc dbctx.Context, row *types.Answer) error
	Get(dbc dbctx.Context, attemptID, questionID uuid.UUID) (*types.Answer, error)
	CountByAttempt(dbc dbctx.Context, attemptID uuid.UUID) (int64, error)
	ListForTest(dbc dbctx.Context, attemptID, testID uuid.UUID) ([]*types.Answer, error)
	ReportDetails(dbc dbctx.Context, attemptID, testID uuid.UUID) ([]attemptdomain.AnswerDetail, error)
	WrongAnswers(dbc dbctx.Context, attemptID uuid.UUID, questionIDs []uuid.UUID, limit int) ([]WrongAnswer, error)
	TopicPerformanceForUser(dbc dbctx.Context, userID uuid.UUID) ([]TopicPerformance, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

// Upsert keeps one row per (attempt, question); the latest submission wins.
func (r *answerRepo) Upsert(dbc dbctx.Context, row *types.Answer) error {
	return dbc.Conn(r.db).
		Omit("Attempt", "Question").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option",
				"is_correct",
				"marks_obtained",
				"time_taken_seconds",
				"answered_at",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *answerRepo) Get(dbc dbctx.Context, attemptID, questionID uuid.UUID) (*types.Answer, error) {
	var a types.Answer
	err := dbc.Conn(r.db).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *answerRepo) CountByAttempt(dbc dbctx.Context, attemptID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(r.db).Model(&types.Answer{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}

// ListForTest returns the attempt's answers restricted to questions still in the test.
func (r *answerRepo) ListForTest(dbc dbctx.Context, attemptID, testID uuid.UUID) ([]*types.Answer, error) {
	var out []*types.Answer
	err := dbc.Conn(r.db).
		Where("attempt_id = ? AND question_id IN (SELECT question_id FROM test_question WHERE test_id = ?)", attemptID, testID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *answerRepo) ReportDetails(dbc dbctx.Context, attemptID, testID uuid.UUID) ([]attemptdomain.AnswerDetail, error) {
	var out []attemptdomain.AnswerDetail
	err := dbc.Conn(r.db).Raw(`
		SELECT tq.sequence_order AS question_number,
			q.id AS question_id, q.question_text, q.options, q.correct_option,
			tp.name AS topic,
			a.selected_option,
			COALESCE(a.is_correct, ?) AS is_correct,
			COALESCE(a.marks_obtained, 0) AS marks_obtained,
			COALESCE(a.time_taken_seconds, 0) AS time_taken_seconds,
			a.answered_at
		FROM test_question tq
		JOIN question q ON q.id = tq.question_id
		JOIN topic tp ON tp.id = q.topic_id
		LEFT JOIN answer a ON a.question_id = q.id AND a.attempt_id = ?
		WHERE tq.test_id = ?
		ORDER BY tq.sequence_order ASC
	`, false, attemptID, testID).Scan(&out).Error
	return out, err
}

func (r *answerRepo) WrongAnswers(dbc dbctx.Context, attemptID uuid.UUID, questionIDs []uuid.UUID, limit int) ([]WrongAnswer, error) {
	var out []WrongAnswer
	if len(questionIDs) == 0 {
		return out, nil
	}
	err := dbc.Conn(r.db).Raw(`
		SELECT q.id AS question_id, q.question_text, q.options, q.correct_option,
			a.selected_option, tp.name AS topic
		FROM answer a
		JOIN question q ON q.id = a.question_id
		JOIN topic tp ON tp.id = q.topic_id
		WHERE a.attempt_id = ?
			AND a.question_id IN ?
			AND a.selected_option IS NOT NULL
			AND a.is_correct = ?
		ORDER BY a.answered_at ASC
		LIMIT ?
	`, attemptID, questionIDs, false, limit).Scan(&out).Error
	return out, err
}

func (r *answerRepo) TopicPerformanceForUser(dbc dbctx.Context, userID uuid.UUID) ([]TopicPerformance, error) {
	var out []TopicPerformance
	err := dbc.Conn(r.db).Raw(`
		SELECT tp.name AS topic,
			COUNT(*) AS total_questions,
			COALESCE(SUM(CASE WHEN ans.marks_obtained > 0 THEN 1 ELSE 0 END), 0) AS correct,
			COALESCE(SUM(CASE WHEN ans.selected_option IS NOT NULL AND ans.marks_obtained <= 0 THEN 1 ELSE 0 END), 0) AS incorrect,
			COALESCE(SUM(CASE WHEN ans.selected_option IS NULL THEN 1 ELSE 0 END), 0) AS unanswered,
			COALESCE(SUM(ans.marks_obtained), 0) AS total_marks
		FROM answer ans
		JOIN attempt a ON a.id = ans.attempt_id
		JOIN question q ON q.id = ans.question_id
		JOIN topic tp ON tp.id = q.topic_id
		WHERE a.user_id = ? AND a.status = ?
		GROUP BY tp.name
		ORDER BY tp.name
	`, userID, types.AttemptCompleted).Scan(&out).Error
	return out, err
}
