package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type QuestionRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.Question) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Question, error)
	List(dbc dbctx.Context, topicID *uuid.UUID, limit, offset int) ([]*types.Question, int64, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) CreateMany(dbc dbctx.Context, rows []*types.Question) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Omit("Topic").Create(&rows).Error
}

func (r *questionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Question, error) {
	var out []*types.Question
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) List(dbc dbctx.Context, topicID *uuid.UUID, limit, offset int) ([]*types.Question, int64, error) {
	scoped := func() *gorm.DB {
		q := dbc.Conn(r.db).Model(&types.Question{})
		if topicID != nil {
			q = q.Where("topic_id = ?", *topicID)
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Question
	err := scoped().Preload("Topic").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
