package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/ctxutil"
	"github.com/yungbote/examgenius-backend/internal/scoring"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Clock returns the current time. Services take one so tests can move time.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func orSystemClock(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return func() time.Time { return c().UTC() }
}

// requireUser returns the authenticated caller or an Unauthorized error.
func requireUser(ctx context.Context) (uuid.UUID, error) {
	uid := ctxutil.UserID(ctx)
	if uid == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("authentication required")
	}
	return uid, nil
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// normalizeSelection trims and upper-cases a submitted option. Blank means unanswered.
func normalizeSelection(selected *string) (*string, error) {
	if selected == nil {
		return nil, nil
	}
	s := strings.ToUpper(strings.TrimSpace(*selected))
	if s == "" {
		return nil, nil
	}
	if !catalog.ValidLetter(s) {
		return nil, apierr.Validation("selected_option must be one of A, B, C or D")
	}
	return &s, nil
}

func toAttemptStats(s scoring.Stats) types.AttemptStats {
	return types.AttemptStats{
		Score:              s.Score,
		TotalQuestions:     s.TotalQuestions,
		CorrectAnswers:     s.Correct,
		IncorrectAnswers:   s.Incorrect,
		Unanswered:         s.Unanswered,
		TotalMarks:         s.TotalMarks,
		AvgTimePerQuestion: s.AvgTimePerQuestion,
	}
}

// deadline is when answers stop being accepted for an attempt started at startedAt.
func deadline(startedAt time.Time, duration, grace time.Duration) time.Time {
	return startedAt.Add(duration + grace)
}

// TopicSummary aggregates one topic of a report.
type TopicSummary struct {
	Topic          string  `json:"topic"`
	TotalQuestions int     `json:"total_questions"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Unanswered     int     `json:"unanswered"`
	TotalMarks     float64 `json:"total_marks"`
	AvgTimeSeconds float64 `json:"avg_time_seconds"`
}

// summarizeTopics groups report rows by topic in order of first appearance.
func summarizeTopics(details []types.AnswerDetail) []TopicSummary {
	out := make([]TopicSummary, 0)
	index := map[string]int{}
	timeTotals := map[string]int{}
	for _, d := range details {
		i, ok := index[d.Topic]
		if !ok {
			i = len(out)
			index[d.Topic] = i
			out = append(out, TopicSummary{Topic: d.Topic})
		}
		ts := &out[i]
		ts.TotalQuestions++
		switch {
		case !d.Answered():
			ts.Unanswered++
		case d.IsCorrect:
			ts.Correct++
		default:
			ts.Incorrect++
		}
		if d.Answered() {
			ts.TotalMarks += d.MarksObtained
			timeTotals[d.Topic] += d.TimeTakenSeconds
		}
	}
	for i := range out {
		if answered := out[i].Correct + out[i].Incorrect; answered > 0 {
			out[i].AvgTimeSeconds = float64(timeTotals[out[i].Topic]) / float64(answered)
		}
	}
	return out
}
