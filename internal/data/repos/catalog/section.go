package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type SectionRepo interface {
	Create(dbc dbctx.Context, s *types.Section) error
	List(dbc dbctx.Context) ([]*types.Section, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Section, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "SectionRepo")}
}

func (r *sectionRepo) Create(dbc dbctx.Context, s *types.Section) error {
	return dbc.Conn(r.db).Create(s).Error
}

func (r *sectionRepo) List(dbc dbctx.Context) ([]*types.Section, error) {
	var out []*types.Section
	if err := dbc.Conn(r.db).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Section, error) {
	var out []*types.Section
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
