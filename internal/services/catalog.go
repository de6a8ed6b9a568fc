package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/data/cache"
	"github.com/yungbote/examgenius-backend/internal/data/repos"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

const activeTestsCacheKey = "examgenius:tests:active"

type TestDetail struct {
	*types.Test
	Sections      []*types.TestSection `json:"sections"`
	QuestionCount int64                `json:"question_count"`
}

type CatalogService interface {
	ListActiveTests(ctx context.Context) ([]repos.TestSummary, error)
	GetTest(ctx context.Context, id uuid.UUID) (*TestDetail, error)
	TestStats(ctx context.Context, id uuid.UUID) (*repos.TestStats, error)
	InvalidateActiveTests(ctx context.Context)
}

type catalogService struct {
	db          *gorm.DB
	log         *logger.Logger
	testRepo    repos.TestRepo
	attemptRepo repos.AttemptRepo
	cache       cache.Cache
	ttl         time.Duration
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, testRepo repos.TestRepo, attemptRepo repos.AttemptRepo, c cache.Cache, ttl time.Duration) CatalogService {
	if c == nil {
		c = cache.NewNoop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &catalogService{
		db:          db,
		log:         log.With("service", "CatalogService"),
		testRepo:    testRepo,
		attemptRepo: attemptRepo,
		cache:       c,
		ttl:         ttl,
	}
}

func (cs *catalogService) ListActiveTests(ctx context.Context) ([]repos.TestSummary, error) {
	var cached []repos.TestSummary
	found, err := cs.cache.Get(ctx, activeTestsCacheKey, &cached)
	if err != nil {
		cs.log.Warn("Active tests cache read failed", "error", err)
	}
	if found && err == nil {
		return cached, nil
	}

	tests, err := cs.testRepo.ListActiveSummaries(dbctx.New(ctx))
	if err != nil {
		return nil, apierr.FromDB("list tests", err, "")
	}
	if tests == nil {
		tests = []repos.TestSummary{}
	}
	if err := cs.cache.Set(ctx, activeTestsCacheKey, tests, cs.ttl); err != nil {
		cs.log.Warn("Active tests cache write failed", "error", err)
	}
	return tests, nil
}

func (cs *catalogService) GetTest(ctx context.Context, id uuid.UUID) (*TestDetail, error) {
	dbc := dbctx.New(ctx)
	t, err := cs.testRepo.GetActiveByID(dbc, id)
	if err != nil {
		return nil, apierr.FromDB("get test", err, "test not found or inactive")
	}
	sections, err := cs.testRepo.ListSections(dbc, id)
	if err != nil {
		return nil, apierr.FromDB("list test sections", err, "")
	}
	count, err := cs.testRepo.CountQuestions(dbc, id)
	if err != nil {
		return nil, apierr.FromDB("count test questions", err, "")
	}
	if sections == nil {
		sections = []*types.TestSection{}
	}
	return &TestDetail{Test: t, Sections: sections, QuestionCount: count}, nil
}

func (cs *catalogService) TestStats(ctx context.Context, id uuid.UUID) (*repos.TestStats, error) {
	dbc := dbctx.New(ctx)
	if _, err := cs.testRepo.GetByID(dbc, id); err != nil {
		return nil, apierr.FromDB("get test", err, "test not found")
	}
	stats, err := cs.attemptRepo.StatsForTest(dbc, id)
	if err != nil {
		return nil, apierr.FromDB("test stats", err, "")
	}
	return stats, nil
}

func (cs *catalogService) InvalidateActiveTests(ctx context.Context) {
	if err := cs.cache.Delete(ctx, activeTestsCacheKey); err != nil {
		cs.log.Warn("Active tests cache invalidation failed", "error", err)
	}
}
