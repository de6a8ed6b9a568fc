package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/examgenius-backend/internal/data/repos"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type JanitorConfig struct {
	StaleAfter time.Duration
	Interval   time.Duration
}

type SweepResult struct {
	Attempts         int64
	PracticeAttempts int64
}

// JanitorService deletes in-progress attempts that were abandoned long ago.
type JanitorService interface {
	Start(ctx context.Context)
	Sweep(ctx context.Context) (SweepResult, error)
	Wait()
}

type janitorService struct {
	db           *gorm.DB
	log          *logger.Logger
	attemptRepo  repos.AttemptRepo
	practiceRepo repos.AIPracticeAttemptRepo
	cfg          JanitorConfig
	now          Clock
	wg           sync.WaitGroup
}

func NewJanitorService(db *gorm.DB, log *logger.Logger, attemptRepo repos.AttemptRepo, practiceRepo repos.AIPracticeAttemptRepo, cfg JanitorConfig, clock Clock) JanitorService {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 24 * time.Hour
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &janitorService{
		db:           db,
		log:          log.With("service", "JanitorService"),
		attemptRepo:  attemptRepo,
		practiceRepo: practiceRepo,
		cfg:          cfg,
		now:          orSystemClock(clock),
	}
}

// Start sweeps once immediately and then every Interval until ctx is cancelled.
func (j *janitorService) Start(ctx context.Context) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()
		for {
			j.sweepSafely(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (j *janitorService) Wait() { j.wg.Wait() }

func (j *janitorService) sweepSafely(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.log.Error("Janitor sweep panic", "panic", r)
		}
	}()
	if ctx.Err() != nil {
		return
	}
	res, err := j.Sweep(ctx)
	if err != nil {
		j.log.Warn("Janitor sweep failed", "error", err)
		return
	}
	if res.Attempts > 0 || res.PracticeAttempts > 0 {
		j.log.Info("Removed stale attempts", "attempts", res.Attempts, "practice_attempts", res.PracticeAttempts)
	}
}

func (j *janitorService) Sweep(ctx context.Context) (SweepResult, error) {
	cutoff := j.now().Add(-j.cfg.StaleAfter)
	var res SweepResult
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		n, err := j.attemptRepo.DeleteStaleInProgress(dbc, cutoff)
		if err != nil {
			return fmt.Errorf("delete stale attempts: %w", err)
		}
		res.Attempts = n
		n, err = j.practiceRepo.DeleteStaleInProgress(dbc, cutoff)
		if err != nil {
			return fmt.Errorf("delete stale practice attempts: %w", err)
		}
		res.PracticeAttempts = n
		return nil
	})
	return res, err
}
