package practice

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type GeneratedQuestionRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.AIGeneratedQuestion) error
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.AIGeneratedQuestion, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
	GetInSession(dbc dbctx.Context, sessionID, questionID uuid.UUID) (*types.AIGeneratedQuestion, error)
}

type generatedQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneratedQuestionRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedQuestionRepo {
	return &generatedQuestionRepo{db: db, log: baseLog.With("repo", "AIGeneratedQuestionRepo")}
}

func (r *generatedQuestionRepo) CreateMany(dbc dbctx.Context, rows []*types.AIGeneratedQuestion) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Omit("Session").Create(&rows).Error
}

func (r *generatedQuestionRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.AIGeneratedQuestion, error) {
	var out []*types.AIGeneratedQuestion
	err := dbc.Conn(r.db).
		Where("session_id = ?", sessionID).
		Order("sequence_order ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generatedQuestionRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(r.db).Model(&types.AIGeneratedQuestion{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

func (r *generatedQuestionRepo) GetInSession(dbc dbctx.Context, sessionID, questionID uuid.UUID) (*types.AIGeneratedQuestion, error) {
	var q types.AIGeneratedQuestion
	err := dbc.Conn(r.db).Where("id = ? AND session_id = ?", questionID, sessionID).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}
