package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

// TestSummary is a catalog row with its question and section counts.
type TestSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	QuestionCount   int64     `json:"question_count"`
	SectionCount    int64     `json:"section_count"`
}

type TestRepo interface {
	Create(dbc dbctx.Context, t *types.Test) error
	CreateSections(dbc dbctx.Context, rows []*types.TestSection) error
	CreateQuestions(dbc dbctx.Context, rows []*types.TestQuestion) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Test, error)
	GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.Test, error)
	ListActiveSummaries(dbc dbctx.Context) ([]TestSummary, error)
	ListSections(dbc dbctx.Context, testID uuid.UUID) ([]*types.TestSection, error)
	ListQuestions(dbc dbctx.Context, testID uuid.UUID) ([]*types.TestQuestion, error)
	CountQuestions(dbc dbctx.Context, testID uuid.UUID) (int64, error)
	GetQuestionInTest(dbc dbctx.Context, testID, questionID uuid.UUID) (*types.Question, error)
	SetActive(dbc dbctx.Context, id uuid.UUID, active bool) error
}

type testRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestRepo(db *gorm.DB, baseLog *logger.Logger) TestRepo {
	return &testRepo{db: db, log: baseLog.With("repo", "TestRepo")}
}

func (r *testRepo) Create(dbc dbctx.Context, t *types.Test) error {
	return dbc.Conn(r.db).Create(t).Error
}

func (r *testRepo) CreateSections(dbc dbctx.Context, rows []*types.TestSection) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Omit("Test", "Section").Create(&rows).Error
}

func (r *testRepo) CreateQuestions(dbc dbctx.Context, rows []*types.TestQuestion) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Omit("Test", "Question").Create(&rows).Error
}

func (r *testRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Test, error) {
	var t types.Test
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *testRepo) GetActiveByID(dbc dbctx.Context, id uuid.UUID) (*types.Test, error) {
	var t types.Test
	if err := dbc.Conn(r.db).Where("id = ? AND is_active = ?", id, true).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *testRepo) ListActiveSummaries(dbc dbctx.Context) ([]TestSummary, error) {
	var out []TestSummary
	err := dbc.Conn(r.db).Raw(`
		SELECT t.id, t.title, t.description, t.duration_minutes, t.is_active, t.created_at,
			(SELECT COUNT(*) FROM test_question tq WHERE tq.test_id = t.id) AS question_count,
			(SELECT COUNT(*) FROM test_section ts WHERE ts.test_id = t.id) AS section_count
		FROM test t
		WHERE t.is_active = ?
		ORDER BY t.created_at DESC
	`, true).Scan(&out).Error
	return out, err
}

func (r *testRepo) ListSections(dbc dbctx.Context, testID uuid.UUID) ([]*types.TestSection, error) {
	var out []*types.TestSection
	err := dbc.Conn(r.db).
		Preload("Section").
		Where("test_id = ?", testID).
		Order("sequence_order ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListQuestions returns the test's questions with topics, ordered by sequence.
func (r *testRepo) ListQuestions(dbc dbctx.Context, testID uuid.UUID) ([]*types.TestQuestion, error) {
	var out []*types.TestQuestion
	err := dbc.Conn(r.db).
		Preload("Question").
		Preload("Question.Topic").
		Where("test_id = ?", testID).
		Order("sequence_order ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *testRepo) CountQuestions(dbc dbctx.Context, testID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(r.db).Model(&types.TestQuestion{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

func (r *testRepo) GetQuestionInTest(dbc dbctx.Context, testID, questionID uuid.UUID) (*types.Question, error) {
	var q types.Question
	err := dbc.Conn(r.db).
		Joins("JOIN test_question tq ON tq.question_id = question.id AND tq.test_id = ?", testID).
		Where("question.id = ?", questionID).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *testRepo) SetActive(dbc dbctx.Context, id uuid.UUID, active bool) error {
	res := dbc.Conn(r.db).Model(&types.Test{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
