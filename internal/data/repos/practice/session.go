package practice

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.AIPracticeSession) error
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.AIPracticeSession, error)
	LatestForAttempt(dbc dbctx.Context, userID, originalAttemptID uuid.UUID) (*types.AIPracticeSession, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.AIPracticeSession, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "AIPracticeSessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.AIPracticeSession) error {
	return dbc.Conn(r.db).Omit("User", "OriginalAttempt").Create(s).Error
}

func (r *sessionRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.AIPracticeSession, error) {
	var s types.AIPracticeSession
	if err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) LatestForAttempt(dbc dbctx.Context, userID, originalAttemptID uuid.UUID) (*types.AIPracticeSession, error) {
	var s types.AIPracticeSession
	err := dbc.Conn(r.db).
		Where("user_id = ? AND original_attempt_id = ?", userID, originalAttemptID).
		Order("created_at DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.AIPracticeSession, error) {
	var out []*types.AIPracticeSession
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
