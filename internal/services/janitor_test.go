package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yungbote/examgenius-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examgenius-backend/internal/domain"
)

func TestJanitorSweep(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "idle@example.com")
	t1, qs := testutil.SeedTest(t, bg, e.db, "Old", 1)
	t2, _ := testutil.SeedTest(t, bg, e.db, "Fresh", 1)
	t3, _ := testutil.SeedTest(t, bg, e.db, "Done", 1)

	now := e.clock.Now()
	stale := testutil.SeedAttempt(t, bg, e.db, u.ID, t1.ID, types.AttemptInProgress, now.Add(-48*time.Hour))
	testutil.SeedAnswer(t, bg, e.db, stale.ID, qs[0].ID, testutil.PtrString("A"), true, 1)
	fresh := testutil.SeedAttempt(t, bg, e.db, u.ID, t2.ID, types.AttemptInProgress, now.Add(-time.Hour))
	old := testutil.SeedAttempt(t, bg, e.db, u.ID, t3.ID, types.AttemptCompleted, now.Add(-72*time.Hour))

	j := NewJanitorService(e.db, e.log, e.attempts, e.practices, JanitorConfig{StaleAfter: 24 * time.Hour}, e.clock.Now)
	res, err := j.Sweep(bg)
	require.NoError(t, err, "Sweep")
	require.EqualValues(t, 1, res.Attempts)
	require.EqualValues(t, 0, res.PracticeAttempts)

	var remaining []types.Attempt
	require.NoError(t, e.db.Order("started_at").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	require.Equal(t, old.ID, remaining[0].ID)
	require.Equal(t, fresh.ID, remaining[1].ID)

	var answers int64
	require.NoError(t, e.db.Model(&types.Answer{}).Where("attempt_id = ?", stale.ID).Count(&answers).Error)
	require.Zero(t, answers)
}

func TestJanitorStartStops(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "loop@example.com")
	test, _ := testutil.SeedTest(t, bg, e.db, "Loop", 1)
	testutil.SeedAttempt(t, bg, e.db, u.ID, test.ID, types.AttemptInProgress, e.clock.Now().Add(-30*time.Hour))

	j := NewJanitorService(e.db, e.log, e.attempts, e.practices, JanitorConfig{StaleAfter: 24 * time.Hour, Interval: 10 * time.Millisecond}, e.clock.Now)
	ctx, cancel := context.WithCancel(bg)
	j.Start(ctx)

	require.Eventually(t, func() bool {
		var n int64
		if err := e.db.Model(&types.Attempt{}).Count(&n).Error; err != nil {
			return false
		}
		return n == 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	j.Wait()
}
