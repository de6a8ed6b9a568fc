package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yungbote/examgenius-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/practicegen"
)

type practiceFixture struct {
	*env
	user     *types.User
	attempt  *types.Attempt
	qs       []*types.Question
	gen      GenerationService
	practice AIPracticeService
}

// newPracticeFixture seeds a completed attempt where the first question was answered wrong,
// the second right and the third left blank.
func newPracticeFixture(t *testing.T) *practiceFixture {
	t.Helper()
	e := newEnv(t)
	bg := context.Background()
	u := testutil.SeedUser(t, bg, e.db, "learner@example.com")
	test, qs := testutil.SeedTest(t, bg, e.db, "Databases", 3)
	a := testutil.SeedAttempt(t, bg, e.db, u.ID, test.ID, types.AttemptCompleted, e.clock.Now().Add(-time.Hour))
	testutil.SeedAnswer(t, bg, e.db, a.ID, qs[0].ID, testutil.PtrString("B"), false, -2)
	testutil.SeedAnswer(t, bg, e.db, a.ID, qs[1].ID, testutil.PtrString("A"), true, 1)
	testutil.SeedAnswer(t, bg, e.db, a.ID, qs[2].ID, nil, false, 0)

	generator := practicegen.New(nil, e.log, practicegen.WithShuffler(practicegen.NewShuffler(rand.New(rand.NewPCG(1, 2)))))
	return &practiceFixture{
		env:      e,
		user:     u,
		attempt:  a,
		qs:       qs,
		gen:      NewGenerationService(e.db, e.log, e.attempts, e.answers, e.sessions, e.aiqs, generator, false),
		practice: e.practiceService(TimingConfig{}),
	}
}

// answerKey reads the stored correct options of a session.
func (f *practiceFixture) answerKey(t *testing.T, sessionID uuid.UUID) map[uuid.UUID]string {
	t.Helper()
	rows, err := f.aiqs.ListBySession(dbctx.New(context.Background()), sessionID)
	require.NoError(t, err)
	key := make(map[uuid.UUID]string, len(rows))
	for _, q := range rows {
		key[q.ID] = q.CorrectOption
	}
	return key
}

func (f *practiceFixture) allIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(f.qs))
	for _, q := range f.qs {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestGenerateSimilarFallsBackToTemplates(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := asUser(f.user)

	out, err := f.gen.GenerateSimilar(ctx, GenerateInput{
		WrongQuestionIDs:  f.allIDs(),
		OriginalAttemptID: f.attempt.ID,
	})
	require.NoError(t, err, "GenerateSimilar")
	require.Equal(t, practicegen.DefaultCount, out.TotalGenerated)
	require.Equal(t, 1, out.BasedOnWrongQuestions)
	require.Equal(t, 0, out.FromLLM)
	require.Equal(t, practicegen.DefaultCount, out.FromTemplates)
	require.Equal(t, 0, out.Variants)
	for i, q := range out.GeneratedQuestions {
		require.Equal(t, i+1, q.SequenceOrder)
		require.Equal(t, types.SourceTemplate, q.Source)
		require.Equal(t, 2.0, q.NegativeMark)
		require.Equal(t, 30, q.TimeLimitSeconds)
		require.True(t, q.Options.Complete())
		require.Empty(t, q.CorrectOption)
	}

	detail, err := f.gen.GetSession(ctx, out.SessionID)
	require.NoError(t, err)
	require.Len(t, detail.Questions, practicegen.DefaultCount)
	require.Equal(t, []string{f.qs[0].ID.String()}, []string(detail.SourceQuestionIDs))
	require.Equal(t, practicegen.DefaultCount, detail.TotalGenerated)

	history, err := f.gen.History(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	stranger := testutil.SeedUser(t, context.Background(), f.db, "stranger@example.com")
	_, err = f.gen.GetSession(asUser(stranger), out.SessionID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestGenerateSimilarMaxQuestions(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := asUser(f.user)

	out, err := f.gen.GenerateSimilar(ctx, GenerateInput{
		WrongQuestionIDs:  f.allIDs(),
		OriginalAttemptID: f.attempt.ID,
		MaxQuestions:      ptr(13),
	})
	require.NoError(t, err)
	require.Equal(t, 13, out.TotalGenerated)
	require.Equal(t, practicegen.TemplateCount, out.FromTemplates)
	require.Equal(t, 3, out.Variants)
	require.Equal(t, types.SourceVariant, out.GeneratedQuestions[12].Source)
}

func TestGenerateSimilarValidation(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := asUser(f.user)

	cases := []struct {
		name   string
		in     GenerateInput
		status int
	}{
		{"no ids", GenerateInput{OriginalAttemptID: f.attempt.ID}, http.StatusBadRequest},
		{"no attempt", GenerateInput{WrongQuestionIDs: f.allIDs()}, http.StatusBadRequest},
		{"zero max", GenerateInput{WrongQuestionIDs: f.allIDs(), OriginalAttemptID: f.attempt.ID, MaxQuestions: ptr(0)}, http.StatusBadRequest},
		{"max too large", GenerateInput{WrongQuestionIDs: f.allIDs(), OriginalAttemptID: f.attempt.ID, MaxQuestions: ptr(51)}, http.StatusBadRequest},
		{"unknown attempt", GenerateInput{WrongQuestionIDs: f.allIDs(), OriginalAttemptID: uuid.New()}, http.StatusNotFound},
		{"only correct answers", GenerateInput{WrongQuestionIDs: []uuid.UUID{f.qs[1].ID, f.qs[2].ID}, OriginalAttemptID: f.attempt.ID}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.gen.GenerateSimilar(ctx, tc.in)
			requireStatus(t, err, tc.status)
		})
	}

	bg := context.Background()
	test, _ := testutil.SeedTest(t, bg, f.db, "Open", 1)
	open := testutil.SeedAttempt(t, bg, f.db, f.user.ID, test.ID, types.AttemptInProgress, f.clock.Now())
	_, err := f.gen.GenerateSimilar(ctx, GenerateInput{WrongQuestionIDs: f.allIDs(), OriginalAttemptID: open.ID})
	requireStatus(t, err, http.StatusNotFound)
}

func TestGeneratedQuestionsWithholdAnswerKey(t *testing.T) {
	for _, expose := range []bool{false, true} {
		t.Run(fmt.Sprintf("expose=%v", expose), func(t *testing.T) {
			f := newPracticeFixture(t)
			generator := practicegen.New(nil, f.log)
			f.gen = NewGenerationService(f.db, f.log, f.attempts, f.answers, f.sessions, f.aiqs, generator, expose)
			ctx := asUser(f.user)

			out, err := f.gen.GenerateSimilar(ctx, GenerateInput{WrongQuestionIDs: f.allIDs(), OriginalAttemptID: f.attempt.ID, MaxQuestions: ptr(4)})
			require.NoError(t, err)
			detail, err := f.gen.GetSession(ctx, out.SessionID)
			require.NoError(t, err)
			require.Len(t, detail.Questions, 4)

			for name, v := range map[string]any{"generate": out, "session": detail} {
				body, err := json.Marshal(v)
				require.NoError(t, err)
				require.Equal(t, expose, strings.Contains(string(body), `"correct_option"`), name)
			}

			key := f.answerKey(t, out.SessionID)
			for _, q := range detail.Questions {
				if expose {
					require.Equal(t, key[q.ID], q.CorrectOption)
				} else {
					require.Empty(t, q.CorrectOption)
				}
			}
		})
	}
}

func TestPracticeLifecycle(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := asUser(f.user)

	_, err := f.practice.Start(ctx, f.attempt.ID)
	requireStatus(t, err, http.StatusNotFound)

	gen, err := f.gen.GenerateSimilar(ctx, GenerateInput{
		WrongQuestionIDs:  f.allIDs(),
		OriginalAttemptID: f.attempt.ID,
		MaxQuestions:      ptr(3),
	})
	require.NoError(t, err)

	started, err := f.practice.Start(ctx, f.attempt.ID)
	require.NoError(t, err, "Start")
	require.Equal(t, gen.SessionID, started.SessionID)
	require.EqualValues(t, 3, started.QuestionsCount)

	qs, err := f.practice.Questions(ctx, started.AIAttemptID)
	require.NoError(t, err)
	require.Len(t, qs.Questions, 3)
	require.Equal(t, 1800, qs.DefaultDurationSeconds)
	for _, q := range qs.Questions {
		require.Empty(t, q.CorrectOption)
	}

	key := f.answerKey(t, gen.SessionID)
	first, second := qs.Questions[0], qs.Questions[1]

	res, err := f.practice.SubmitAnswer(ctx, started.AIAttemptID, SubmitAnswerInput{QuestionID: first.ID, SelectedOption: ptr(key[first.ID]), TimeTakenSeconds: 15})
	require.NoError(t, err)
	require.True(t, res.IsCorrect)

	wrong := "A"
	if key[second.ID] == "A" {
		wrong = "B"
	}
	res, err = f.practice.SubmitAnswer(ctx, started.AIAttemptID, SubmitAnswerInput{QuestionID: second.ID, SelectedOption: &wrong, TimeTakenSeconds: 5})
	require.NoError(t, err)
	require.False(t, res.IsCorrect)
	require.Equal(t, -2.0, res.MarksObtained)

	_, err = f.practice.SubmitAnswer(ctx, started.AIAttemptID, SubmitAnswerInput{QuestionID: f.qs[0].ID, SelectedOption: ptr("A")})
	requireStatus(t, err, http.StatusNotFound)

	fin, err := f.practice.Finish(ctx, started.AIAttemptID)
	require.NoError(t, err, "Finish")
	require.False(t, fin.AlreadyCompleted)
	require.Equal(t, 1, fin.CorrectAnswers)
	require.Equal(t, 1, fin.IncorrectAnswers)
	require.Equal(t, 1, fin.Unanswered)
	require.InDelta(t, 100.0/3-2, fin.Score, 1e-9)
	require.Equal(t, ImprovementMessage(fin.Score), fin.ImprovementMessage)

	again, err := f.practice.Finish(ctx, started.AIAttemptID)
	require.NoError(t, err)
	require.True(t, again.AlreadyCompleted)
	require.InDelta(t, fin.Score, again.Score, 1e-9)

	_, err = f.practice.Questions(ctx, started.AIAttemptID)
	requireStatus(t, err, http.StatusConflict)
	_, err = f.practice.SubmitAnswer(ctx, started.AIAttemptID, SubmitAnswerInput{QuestionID: first.ID, SelectedOption: ptr("A")})
	requireStatus(t, err, http.StatusConflict)

	report, err := f.practice.Report(ctx, started.AIAttemptID)
	require.NoError(t, err)
	require.Len(t, report.Answers, 3)
	require.Len(t, report.TopicSummary, 1)
	require.Equal(t, 1, report.TopicSummary[0].Unanswered)

	done, err := f.practice.ListCompleted(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, done, 1)
}

func TestPracticeTimeLimit(t *testing.T) {
	f := newPracticeFixture(t)
	f.practice = f.practiceService(TimingConfig{EnforceTimeLimit: true, TimeLimitGrace: 30 * time.Second})
	ctx := asUser(f.user)

	gen, err := f.gen.GenerateSimilar(ctx, GenerateInput{WrongQuestionIDs: f.allIDs(), OriginalAttemptID: f.attempt.ID, MaxQuestions: ptr(1)})
	require.NoError(t, err)
	started, err := f.practice.Start(ctx, f.attempt.ID)
	require.NoError(t, err)

	f.clock.Advance(DefaultPracticeDuration + time.Minute)
	_, err = f.practice.SubmitAnswer(ctx, started.AIAttemptID, SubmitAnswerInput{QuestionID: gen.GeneratedQuestions[0].ID, SelectedOption: ptr("A")})
	requireStatus(t, err, http.StatusConflict)

	fin, err := f.practice.Finish(ctx, started.AIAttemptID)
	require.NoError(t, err)
	require.Equal(t, 0.0, fin.Score)
	require.Equal(t, ImprovementMessage(0), fin.ImprovementMessage)
}

func TestImprovementMessage(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{100, "Excellent! You've improved significantly on these concepts!"},
		{70, "Excellent! You've improved significantly on these concepts!"},
		{69.9, "Good practice! Keep working on these topics for better understanding."},
		{0.5, "Good practice! Keep working on these topics for better understanding."},
		{0, "No answers submitted. Practice more to improve your skills!"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ImprovementMessage(tc.score), "score=%v", tc.score)
	}
}
