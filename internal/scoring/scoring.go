// Package scoring turns per-question answer records into attempt aggregates.
package scoring

import "math"

// DefaultNegativeMark is deducted for a wrong answer when a question does not carry its own weight.
const DefaultNegativeMark = 2.0

// Mark is one stored answer as seen by the scorer.
type Mark struct {
	Answered         bool
	Correct          bool
	Marks            float64
	TimeTakenSeconds int
}

type Stats struct {
	TotalQuestions     int     `json:"total_questions"`
	Correct            int     `json:"correct_answers"`
	Incorrect          int     `json:"incorrect_answers"`
	Unanswered         int     `json:"unanswered"`
	TotalMarks         float64 `json:"total_marks"`
	AvgTimePerQuestion float64 `json:"avg_time_per_question"`
	Score              float64 `json:"score"`
}

// Compute aggregates marks for an attempt over total questions.
//
// A correct answer is worth 100/total points. Each incorrect answer deducts the
// negative of its stored marks, which is 2 under the default weight. The score
// is floored at 0.
func Compute(total int, marks []Mark) Stats {
	if total < 0 {
		total = 0
	}
	st := Stats{TotalQuestions: total}

	answered := 0
	penalty := 0.0
	timeSum := 0
	for _, m := range marks {
		st.TotalMarks += m.Marks
		timeSum += m.TimeTakenSeconds
		if m.Answered {
			answered++
		}
		switch {
		case m.Marks > 0:
			st.Correct++
		case m.Answered:
			st.Incorrect++
			if m.Marks < 0 {
				penalty += -m.Marks
			}
		}
	}

	st.Unanswered = total - answered
	if st.Unanswered < 0 {
		st.Unanswered = 0
	}
	if len(marks) > 0 {
		st.AvgTimePerQuestion = float64(timeSum) / float64(len(marks))
	}
	if total > 0 {
		st.Score = math.Max(0, float64(st.Correct)*(100/float64(total))-penalty)
	}
	return st
}

// SubmitMarks scores a single submission: no selection earns 0, a correct one +1,
// and a wrong one the negative of negativeMark.
func SubmitMarks(selected *string, correct string, negativeMark float64) (bool, float64) {
	if selected == nil || *selected == "" {
		return false, 0
	}
	if *selected == correct {
		return true, 1
	}
	if negativeMark <= 0 {
		negativeMark = DefaultNegativeMark
	}
	return false, -negativeMark
}
