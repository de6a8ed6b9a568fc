package attempt

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

// AttemptListItem is a completed attempt with its test title.
type AttemptListItem struct {
	types.Attempt
	TestTitle string `json:"test_title"`
}

type TestStats struct {
	TotalAttempts     int64    `json:"total_attempts"`
	CompletedAttempts int64    `json:"completed_attempts"`
	AverageScore      *float64 `json:"average_score"`
	HighestScore      *float64 `json:"highest_score"`
	LowestScore       *float64 `json:"lowest_score"`
	UniqueUsers       int64    `json:"unique_users"`
}

type UserAttemptStats struct {
	UserID            uuid.UUID `json:"user_id"`
	TotalAttempts     int64     `json:"total_attempts"`
	CompletedAttempts int64     `json:"completed_attempts"`
	AverageScore      *float64  `json:"average_score"`
	HighestScore      *float64  `json:"highest_score"`
	TotalCorrect      int64     `json:"total_correct"`
	TotalIncorrect    int64     `json:"total_incorrect"`
}

// AttemptMarks is an attempt with its answers' positive and negative marks split.
type AttemptMarks struct {
	ID               uuid.UUID  `json:"id"`
	TestID           uuid.UUID  `json:"test_id"`
	TestTitle        string     `json:"test_title"`
	Status           string     `json:"status"`
	Score            float64    `json:"score"`
	CorrectAnswers   int        `json:"correct_answers"`
	IncorrectAnswers int        `json:"incorrect_answers"`
	Unanswered       int        `json:"unanswered"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	PositiveMarks    float64    `json:"positive_marks"`
	NegativeMarks    float64    `json:"negative_marks"`
}

type AttemptRepo interface {
	Create(dbc dbctx.Context, a *types.Attempt) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Attempt, error)
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Attempt, error)
	FindInProgress(dbc dbctx.Context, userID, testID uuid.UUID) (*types.Attempt, error)
	MarkCompleted(dbc dbctx.Context, id uuid.UUID, stats types.AttemptStats, finishedAt time.Time) (int64, error)
	ListCompletedByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]AttemptListItem, error)
	ListMarksByUser(dbc dbctx.Context, userID uuid.UUID) ([]AttemptMarks, error)
	StatsForTest(dbc dbctx.Context, testID uuid.UUID) (*TestStats, error)
	StatsForUsers(dbc dbctx.Context, userIDs []uuid.UUID) ([]UserAttemptStats, error)
	DeleteStaleInProgress(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{db: db, log: baseLog.With("repo", "AttemptRepo")}
}

func (r *attemptRepo) Create(dbc dbctx.Context, a *types.Attempt) error {
	return dbc.Conn(r.db).Omit("User", "Test").Create(a).Error
}

func (r *attemptRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Attempt, error) {
	var a types.Attempt
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Attempt, error) {
	var a types.Attempt
	if err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgress returns nil without error when the pair has no open attempt.
func (r *attemptRepo) FindInProgress(dbc dbctx.Context, userID, testID uuid.UUID) (*types.Attempt, error) {
	var rows []*types.Attempt
	err := dbc.Conn(r.db).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, types.AttemptInProgress).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// MarkCompleted writes the aggregates only while the attempt is still in progress.
// The returned count is 0 when another caller completed it first.
func (r *attemptRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID, stats types.AttemptStats, finishedAt time.Time) (int64, error) {
	res := dbc.Conn(r.db).Model(&types.Attempt{}).
		Where("id = ? AND status = ?", id, types.AttemptInProgress).
		Updates(completionColumns(stats, finishedAt))
	return res.RowsAffected, res.Error
}

func completionColumns(stats types.AttemptStats, finishedAt time.Time) map[string]interface{} {
	return map[string]interface{}{
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
	}
}

func (r *attemptRepo) ListCompletedByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]AttemptListItem, error) {
	var out []AttemptListItem
	q := dbc.Conn(r.db).Model(&types.Attempt{}).
		Select("attempt.*, test.title AS test_title").
		Joins("JOIN test ON test.id = attempt.test_id").
		Where("attempt.user_id = ? AND attempt.status = ?", userID, types.AttemptCompleted).
		Order("attempt.finished_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attemptRepo) ListMarksByUser(dbc dbctx.Context, userID uuid.UUID) ([]AttemptMarks, error) {
	var out []AttemptMarks
	err := dbc.Conn(r.db).Raw(`
		SELECT a.id, a.test_id, t.title AS test_title, a.status, a.score,
			a.correct_answers, a.incorrect_answers, a.unanswered, a.started_at, a.finished_at,
			COALESCE(SUM(CASE WHEN ans.marks_obtained > 0 THEN ans.marks_obtained ELSE 0 END), 0) AS positive_marks,
			COALESCE(SUM(CASE WHEN ans.marks_obtained < 0 THEN ans.marks_obtained ELSE 0 END), 0) AS negative_marks
		FROM attempt a
		JOIN test t ON t.id = a.test_id
		LEFT JOIN answer ans ON ans.attempt_id = a.id
		WHERE a.user_id = ?
		GROUP BY a.id, t.title
		ORDER BY a.started_at DESC
	`, userID).Scan(&out).Error
	return out, err
}

func (r *attemptRepo) StatsForTest(dbc dbctx.Context, testID uuid.UUID) (*TestStats, error) {
	var out TestStats
	err := dbc.Conn(r.db).Raw(`
		SELECT COUNT(*) AS total_attempts,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_attempts,
			AVG(CASE WHEN status = ? THEN score END) AS average_score,
			MAX(CASE WHEN status = ? THEN score END) AS highest_score,
			MIN(CASE WHEN status = ? THEN score END) AS lowest_score,
			COUNT(DISTINCT user_id) AS unique_users
		FROM attempt
		WHERE test_id = ?
	`, types.AttemptCompleted, types.AttemptCompleted, types.AttemptCompleted, types.AttemptCompleted, testID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *attemptRepo) StatsForUsers(dbc dbctx.Context, userIDs []uuid.UUID) ([]UserAttemptStats, error) {
	var out []UserAttemptStats
	if len(userIDs) == 0 {
		return out, nil
	}
	err := dbc.Conn(r.db).Raw(`
		SELECT user_id,
			COUNT(*) AS total_attempts,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_attempts,
			AVG(CASE WHEN status = ? THEN score END) AS average_score,
			MAX(CASE WHEN status = ? THEN score END) AS highest_score,
			COALESCE(SUM(correct_answers), 0) AS total_correct,
			COALESCE(SUM(incorrect_answers), 0) AS total_incorrect
		FROM attempt
		WHERE user_id IN ?
		GROUP BY user_id
	`, types.AttemptCompleted, types.AttemptCompleted, types.AttemptCompleted, userIDs).Scan(&out).Error
	return out, err
}

// DeleteStaleInProgress removes open attempts started before cutoff along with their answers.
func (r *attemptRepo) DeleteStaleInProgress(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	conn := dbc.Conn(r.db)
	stale := conn.Model(&types.Attempt{}).
		Select("id").
		Where("status = ? AND started_at < ?", types.AttemptInProgress, cutoff)
	if err := conn.Where("attempt_id IN (?)", stale).Delete(&types.Answer{}).Error; err != nil {
		return 0, err
	}
	res := conn.Where("status = ? AND started_at < ?", types.AttemptInProgress, cutoff).Delete(&types.Attempt{})
	return res.RowsAffected, res.Error
}
