package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	attemptdomain "github.com/yungbote/examgenius-backend/internal/domain/attempt"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type PracticeAttemptRepo interface {
	Create(dbc dbctx.Context, a *types.AIPracticeAttempt) error
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.AIPracticeAttempt, error)
	MarkCompleted(dbc dbctx.Context, id uuid.UUID, stats types.AttemptStats, finishedAt time.Time) (int64, error)
	ListCompletedByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.AIPracticeAttempt, error)
	DeleteStaleInProgress(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type practiceAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeAttemptRepo(db *gorm.DB, baseLog *logger.Logger) PracticeAttemptRepo {
	return &practiceAttemptRepo{db: db, log: baseLog.With("repo", "AIPracticeAttemptRepo")}
}

func (r *practiceAttemptRepo) Create(dbc dbctx.Context, a *types.AIPracticeAttempt) error {
	return dbc.Conn(r.db).Omit("User", "Session").Create(a).Error
}

func (r *practiceAttemptRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.AIPracticeAttempt, error) {
	var a types.AIPracticeAttempt
	if err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *practiceAttemptRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID, stats types.AttemptStats, finishedAt time.Time) (int64, error) {
	res := dbc.Conn(r.db).Model(&types.AIPracticeAttempt{}).
		Where("id = ? AND status = ?", id, types.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":                types.AttemptCompleted,
			"finished_at":           finishedAt,
			"score":                 stats.Score,
			"total_questions":       stats.TotalQuestions,
			"correct_answers":       stats.CorrectAnswers,
			"incorrect_answers":     stats.IncorrectAnswers,
			"unanswered":            stats.Unanswered,
			"total_marks":           stats.TotalMarks,
			"avg_time_per_question": stats.AvgTimePerQuestion,
			"updated_at":            finishedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *practiceAttemptRepo) ListCompletedByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.AIPracticeAttempt, error) {
	var out []*types.AIPracticeAttempt
	q := dbc.Conn(r.db).
		Where("user_id = ? AND status = ?", userID, types.AttemptCompleted).
		Order("finished_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceAttemptRepo) DeleteStaleInProgress(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	conn := dbc.Conn(r.db)
	stale := conn.Model(&types.AIPracticeAttempt{}).
		Select("id").
		Where("status = ? AND started_at < ?", types.AttemptInProgress, cutoff)
	if err := conn.Where("ai_attempt_id IN (?)", stale).Delete(&types.AIPracticeAnswer{}).Error; err != nil {
		return 0, err
	}
	res := conn.Where("status = ? AND started_at < ?", types.AttemptInProgress, cutoff).Delete(&types.AIPracticeAttempt{})
	return res.RowsAffected, res.Error
}

type PracticeAnswerRepo interface {
	Upsert(dbc dbctx.Context, row *types.AIPracticeAnswer) error
	ListByAttempt(dbc dbctx.Context, aiAttemptID uuid.UUID) ([]*types.AIPracticeAnswer, error)
	ReportDetails(dbc dbctx.Context, aiAttemptID, sessionID uuid.UUID) ([]attemptdomain.AnswerDetail, error)
}

type practiceAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeAnswerRepo(db *gorm.DB, baseLog *logger.Logger) PracticeAnswerRepo {
	return &practiceAnswerRepo{db: db, log: baseLog.With("repo", "AIPracticeAnswerRepo")}
}

func (r *practiceAnswerRepo) Upsert(dbc dbctx.Context, row *types.AIPracticeAnswer) error {
	return dbc.Conn(r.db).
		Omit("AIAttempt", "AIQuestion").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ai_attempt_id"}, {Name: "ai_question_id"}},
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

func (r *practiceAnswerRepo) ListByAttempt(dbc dbctx.Context, aiAttemptID uuid.UUID) ([]*types.AIPracticeAnswer, error) {
	var out []*types.AIPracticeAnswer
	if err := dbc.Conn(r.db).Where("ai_attempt_id = ?", aiAttemptID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceAnswerRepo) ReportDetails(dbc dbctx.Context, aiAttemptID, sessionID uuid.UUID) ([]attemptdomain.AnswerDetail, error) {
	var out []attemptdomain.AnswerDetail
	err := dbc.Conn(r.db).Raw(`
		SELECT q.sequence_order AS question_number,
			q.id AS question_id, q.question_text, q.options, q.correct_option, q.topic,
			a.selected_option,
			COALESCE(a.is_correct, ?) AS is_correct,
			COALESCE(a.marks_obtained, 0) AS marks_obtained,
			COALESCE(a.time_taken_seconds, 0) AS time_taken_seconds,
			a.answered_at
		FROM ai_generated_question q
		LEFT JOIN ai_practice_answer a ON a.ai_question_id = q.id AND a.ai_attempt_id = ?
		WHERE q.session_id = ?
		ORDER BY q.sequence_order ASC
	`, false, aiAttemptID, sessionID).Scan(&out).Error
	return out, err
}
