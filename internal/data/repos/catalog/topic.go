package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type TopicWithCount struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	QuestionCount int64     `json:"question_count"`
}

type TopicRepo interface {
	GetOrCreate(dbc dbctx.Context, name, description string) (*types.Topic, error)
	GetByName(dbc dbctx.Context, name string) (*types.Topic, error)
	ListWithCounts(dbc dbctx.Context) ([]TopicWithCount, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

// GetOrCreate inserts the topic if missing and returns the stored row either way.
func (r *topicRepo) GetOrCreate(dbc dbctx.Context, name, description string) (*types.Topic, error) {
	name = strings.TrimSpace(name)
	conn := dbc.Conn(r.db)
	row := &types.Topic{Name: name, Description: description}
	if err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByName(dbc, name)
}

func (r *topicRepo) GetByName(dbc dbctx.Context, name string) (*types.Topic, error) {
	var t types.Topic
	if err := dbc.Conn(r.db).Where("name = ?", strings.TrimSpace(name)).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *topicRepo) ListWithCounts(dbc dbctx.Context) ([]TopicWithCount, error) {
	var out []TopicWithCount
	err := dbc.Conn(r.db).Raw(`
		SELECT t.id, t.name, t.description, COUNT(q.id) AS question_count
		FROM topic t
		LEFT JOIN question q ON q.topic_id = t.id
		GROUP BY t.id, t.name, t.description
		ORDER BY t.name
	`).Scan(&out).Error
	return out, err
}
