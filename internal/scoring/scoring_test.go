package scoring

import (
	"math"
	"math/rand/v2"
	"testing"
)

func ptr(s string) *string { return &s }

func TestComputeScenarioFiveQuestions(t *testing.T) {
	marks := []Mark{
		{Answered: true, Correct: true, Marks: 1, TimeTakenSeconds: 10},
		{Answered: true, Correct: true, Marks: 1, TimeTakenSeconds: 20},
		{Answered: true, Correct: true, Marks: 1, TimeTakenSeconds: 30},
		{Answered: true, Correct: false, Marks: -2, TimeTakenSeconds: 40},
		{Answered: false, Marks: 0, TimeTakenSeconds: 0},
	}
	st := Compute(5, marks)
	if st.Correct != 3 || st.Incorrect != 1 || st.Unanswered != 1 {
		t.Fatalf("counts: got %+v", st)
	}
	if st.Score != 58 {
		t.Fatalf("score: expected 58, got %v", st.Score)
	}
	if st.TotalMarks != 1 {
		t.Fatalf("total marks: expected 1, got %v", st.TotalMarks)
	}
	if st.AvgTimePerQuestion != 20 {
		t.Fatalf("avg time: expected 20, got %v", st.AvgTimePerQuestion)
	}
}

func TestComputeMissingAnswerRowsCountAsUnanswered(t *testing.T) {
	st := Compute(4, []Mark{{Answered: true, Correct: true, Marks: 1}})
	if st.Unanswered != 3 || st.Correct != 1 || st.Score != 25 {
		t.Fatalf("got %+v", st)
	}
}

func TestComputeEmpty(t *testing.T) {
	st := Compute(0, nil)
	if st.Score != 0 || st.AvgTimePerQuestion != 0 || st.Unanswered != 0 {
		t.Fatalf("got %+v", st)
	}
	st = Compute(3, nil)
	if st.Score != 0 || st.Unanswered != 3 {
		t.Fatalf("got %+v", st)
	}
}

func TestComputeFloorsAtZero(t *testing.T) {
	marks := []Mark{
		{Answered: true, Marks: -2},
		{Answered: true, Marks: -2},
		{Answered: true, Correct: true, Marks: 1},
	}
	st := Compute(50, marks)
	if st.Score != 0 {
		t.Fatalf("expected floor at 0, got %v", st.Score)
	}
}

func TestComputeUsesPerQuestionNegativeMark(t *testing.T) {
	marks := []Mark{
		{Answered: true, Correct: true, Marks: 1},
		{Answered: true, Marks: -0.5},
	}
	st := Compute(2, marks)
	if st.Score != 49.5 {
		t.Fatalf("expected 49.5, got %v", st.Score)
	}
}

// Randomized check of the invariants that hold for every attempt under default weights.
func TestComputeProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		total := 1 + r.IntN(40)
		var marks []Mark
		correct, incorrect := 0, 0
		for q := 0; q < total; q++ {
			switch r.IntN(4) {
			case 0:
				// no row
			case 1:
				marks = append(marks, Mark{Answered: false})
			case 2:
				isCorrect, m := SubmitMarks(ptr("A"), "A", DefaultNegativeMark)
				marks = append(marks, Mark{Answered: true, Correct: isCorrect, Marks: m, TimeTakenSeconds: r.IntN(60)})
				correct++
			case 3:
				isCorrect, m := SubmitMarks(ptr("B"), "A", DefaultNegativeMark)
				marks = append(marks, Mark{Answered: true, Correct: isCorrect, Marks: m, TimeTakenSeconds: r.IntN(60)})
				incorrect++
			}
		}
		st := Compute(total, marks)
		if st.Correct+st.Incorrect+st.Unanswered != total {
			t.Fatalf("counts do not add up: %+v", st)
		}
		if st.Correct != correct || st.Incorrect != incorrect {
			t.Fatalf("expected %d/%d, got %+v", correct, incorrect, st)
		}
		want := math.Max(0, float64(correct)*(100/float64(total))-float64(incorrect)*2)
		if math.Abs(st.Score-want) > 1e-9 {
			t.Fatalf("score: expected %v, got %v", want, st.Score)
		}
		if st.Score < 0 || st.Score > 100 {
			t.Fatalf("score out of range: %v", st.Score)
		}
		if again := Compute(total, marks); again != st {
			t.Fatalf("not deterministic: %+v vs %+v", st, again)
		}
	}
}

func TestSubmitMarks(t *testing.T) {
	cases := []struct {
		name     string
		selected *string
		neg      float64
		correct  bool
		marks    float64
	}{
		{"unanswered", nil, 2, false, 0},
		{"empty", ptr(""), 2, false, 0},
		{"correct", ptr("C"), 2, true, 1},
		{"wrong", ptr("A"), 2, false, -2},
		{"wrong custom weight", ptr("A"), 0.25, false, -0.25},
		{"wrong default weight", ptr("D"), 0, false, -2},
	}
	for _, tc := range cases {
		ok, m := SubmitMarks(tc.selected, "C", tc.neg)
		if ok != tc.correct || m != tc.marks {
			t.Fatalf("%s: got (%v, %v), want (%v, %v)", tc.name, ok, m, tc.correct, tc.marks)
		}
	}
}
