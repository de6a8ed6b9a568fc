package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yungbote/examgenius-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examgenius-backend/internal/domain"
)

func TestAttemptLifecycle(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "taker@example.com")
	test, qs := testutil.SeedTest(t, bg, e.db, "Go Basics", 4)
	svc := e.attemptService(TimingConfig{})
	ctx := asUser(u)

	started, err := svc.Start(ctx, test.ID)
	require.NoError(t, err, "Start")
	require.Equal(t, 4, started.TotalQuestions)
	require.Equal(t, "Go Basics", started.TestTitle)
	require.Nil(t, started.ExpiresAt)
	for i, q := range started.Questions {
		require.Equal(t, i+1, q.SequenceOrder)
		require.Equal(t, qs[i].ID, q.ID)
		require.Empty(t, q.CorrectOption, "answer key must be withheld")
		require.NotEmpty(t, q.Options.A)
	}

	_, err = svc.Start(ctx, test.ID)
	requireStatus(t, err, http.StatusConflict)

	res, err := svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[0].ID, SelectedOption: ptr(" a "), TimeTakenSeconds: 12})
	require.NoError(t, err, "submit q1")
	require.True(t, res.IsCorrect)
	require.Equal(t, 1.0, res.MarksObtained)
	require.Equal(t, "A", res.CorrectOption)

	res, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[1].ID, SelectedOption: ptr("B"), TimeTakenSeconds: 20})
	require.NoError(t, err, "submit q2")
	require.False(t, res.IsCorrect)
	require.Equal(t, -2.0, res.MarksObtained)

	// resubmission replaces the earlier answer
	res, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[1].ID, SelectedOption: ptr("A"), TimeTakenSeconds: 8})
	require.NoError(t, err, "resubmit q2")
	require.True(t, res.IsCorrect)

	res, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[2].ID, SelectedOption: ptr("  ")})
	require.NoError(t, err, "submit blank q3")
	require.False(t, res.IsCorrect)
	require.Equal(t, 0.0, res.MarksObtained)

	_, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[3].ID, SelectedOption: ptr("E")})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: uuid.New(), SelectedOption: ptr("A")})
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[3].ID, SelectedOption: ptr("A"), TimeTakenSeconds: -1})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Report(ctx, started.AttemptID)
	requireStatus(t, err, http.StatusNotFound)

	e.clock.Advance(5 * time.Minute)
	fin, err := svc.Finish(ctx, started.AttemptID)
	require.NoError(t, err, "Finish")
	require.False(t, fin.AlreadyCompleted)
	require.Equal(t, types.AttemptCompleted, fin.Status)
	require.Equal(t, 4, fin.TotalQuestions)
	require.Equal(t, 2, fin.CorrectAnswers)
	require.Equal(t, 0, fin.IncorrectAnswers)
	require.Equal(t, 2, fin.Unanswered)
	require.InDelta(t, 50.0, fin.Score, 1e-9)
	require.InDelta(t, 2.0, fin.TotalMarks, 1e-9)
	require.NotNil(t, fin.FinishedAt)

	again, err := svc.Finish(ctx, started.AttemptID)
	require.NoError(t, err, "second Finish")
	require.True(t, again.AlreadyCompleted)
	require.InDelta(t, fin.Score, again.Score, 1e-9)
	require.Equal(t, fin.CorrectAnswers, again.CorrectAnswers)

	_, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[3].ID, SelectedOption: ptr("A")})
	requireStatus(t, err, http.StatusConflict)

	report, err := svc.Report(ctx, started.AttemptID)
	require.NoError(t, err, "Report")
	require.Equal(t, "Go Basics", report.TestTitle)
	require.Len(t, report.Answers, 4)
	require.Len(t, report.TopicSummary, 1)
	ts := report.TopicSummary[0]
	require.Equal(t, 4, ts.TotalQuestions)
	require.Equal(t, 2, ts.Correct)
	require.Equal(t, 0, ts.Incorrect)
	require.Equal(t, 2, ts.Unanswered)
	require.InDelta(t, 10.0, ts.AvgTimeSeconds, 1e-9)

	list, err := svc.ListCompleted(ctx, 0, 0)
	require.NoError(t, err, "ListCompleted")
	require.Len(t, list, 1)
	require.Equal(t, "Go Basics", list[0].TestTitle)

	// a fresh attempt is allowed once the previous one completed
	_, err = svc.Start(ctx, test.ID)
	require.NoError(t, err, "restart after completion")
}

func TestAttemptScoreIsFlooredAtZero(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "floor@example.com")
	test, qs := testutil.SeedTest(t, bg, e.db, "Hard", 2)
	svc := e.attemptService(TimingConfig{})
	ctx := asUser(u)

	started, err := svc.Start(ctx, test.ID)
	require.NoError(t, err)
	for _, q := range qs {
		_, err := svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: q.ID, SelectedOption: ptr("C")})
		require.NoError(t, err)
	}
	fin, err := svc.Finish(ctx, started.AttemptID)
	require.NoError(t, err)
	require.Equal(t, 0.0, fin.Score)
	require.Equal(t, 2, fin.IncorrectAnswers)
	require.InDelta(t, -4.0, fin.TotalMarks, 1e-9)
}

func TestAttemptConcurrentStart(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "racer@example.com")
	test, _ := testutil.SeedTest(t, bg, e.db, "Race", 2)
	svc := e.attemptService(TimingConfig{})
	ctx := asUser(u)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Start(ctx, test.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireStatus(t, err, http.StatusConflict)
	}
	require.Equal(t, 1, ok)
}

func TestAttemptOwnershipAndAuth(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	owner := testutil.SeedUser(t, bg, e.db, "owner@example.com")
	other := testutil.SeedUser(t, bg, e.db, "other@example.com")
	test, qs := testutil.SeedTest(t, bg, e.db, "Mine", 1)
	svc := e.attemptService(TimingConfig{})

	started, err := svc.Start(asUser(owner), test.ID)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(asUser(other), started.AttemptID, SubmitAnswerInput{QuestionID: qs[0].ID, SelectedOption: ptr("A")})
	requireStatus(t, err, http.StatusNotFound)
	_, err = svc.Finish(asUser(other), started.AttemptID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.Start(bg, test.ID)
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Start(asUser(owner), uuid.New())
	requireStatus(t, err, http.StatusNotFound)
}

func TestAttemptInactiveTest(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "inactive@example.com")
	test, _ := testutil.SeedTest(t, bg, e.db, "Retired", 1)
	require.NoError(t, e.db.Model(&types.Test{}).Where("id = ?", test.ID).Update("is_active", false).Error)

	_, err := e.attemptService(TimingConfig{}).Start(asUser(u), test.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAttemptExposeAnswerKey(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "key@example.com")
	test, _ := testutil.SeedTest(t, bg, e.db, "Open Book", 2)

	started, err := e.attemptService(TimingConfig{ExposeAnswerKey: true}).Start(asUser(u), test.ID)
	require.NoError(t, err)
	for _, q := range started.Questions {
		require.Equal(t, "A", q.CorrectOption)
	}
}

func TestAttemptTimeLimit(t *testing.T) {
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "clock@example.com")
	test, qs := testutil.SeedTest(t, bg, e.db, "Timed", 3)
	svc := e.attemptService(TimingConfig{EnforceTimeLimit: true, TimeLimitGrace: 30 * time.Second})
	ctx := asUser(u)

	started, err := svc.Start(ctx, test.ID)
	require.NoError(t, err)
	require.NotNil(t, started.ExpiresAt)
	require.Equal(t, started.StartedAt.Add(30*time.Minute), *started.ExpiresAt)

	// inside the grace window
	e.clock.Advance(30*time.Minute + 20*time.Second)
	_, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[0].ID, SelectedOption: ptr("A")})
	require.NoError(t, err)

	e.clock.Advance(15 * time.Second)
	_, err = svc.SubmitAnswer(ctx, started.AttemptID, SubmitAnswerInput{QuestionID: qs[1].ID, SelectedOption: ptr("A")})
	requireStatus(t, err, http.StatusConflict)

	fin, err := svc.Finish(ctx, started.AttemptID)
	require.NoError(t, err)
	require.Equal(t, 1, fin.CorrectAnswers)
	require.Equal(t, 2, fin.Unanswered)
}
