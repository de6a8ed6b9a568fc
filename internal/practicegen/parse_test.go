package practicegen

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yungbote/examgenius-backend/internal/llm"
)

func TestParseRepairsTruncatedArray(t *testing.T) {
	text := `Here you go:
[
  {"question_text": "q1", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_option": "A", "topic": "SQL"},
  {"question_text": "q2", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_option": "B", "topic": "SQL"},
  {"question_text": "q3", "options": {"A": "a", "B": "b"}, "correct_op`

	cands, err := parseCandidates(text, llm.StopMaxTokens, nil)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	require.Equal(t, "q2", cands[1].QuestionText)
	require.Equal(t, "B", cands[1].CorrectOption)
}

func TestParseAcceptsOptionArrays(t *testing.T) {
	text := "```json\n" + `[{"question_text": "q1", "options": [{"key": "A", "text": "one"}, {"key": "b", "text": "two"}, {"key": "C", "text": "three"}, {"key": "D", "text": "four"}], "correct_option": "c", "topic": "Go"},
{"question_text": "q2", "options": ["w", "x", "y", "z"], "correct_option": "D", "topic": "Go"}]` + "\n```"

	cands, err := parseCandidates(text, llm.StopEnd, nil)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	require.Equal(t, map[string]string{"A": "one", "B": "two", "C": "three", "D": "four"}, cands[0].Options)
	require.Equal(t, "C", cands[0].CorrectOption)
	require.Equal(t, "z", cands[1].Options["D"])
}

func TestParseScrapesQuestionTextOnBrokenJSON(t *testing.T) {
	text := `[{"question_text": "What is a closure in JavaScript?", "options": {oops}, {"question_text": "How do promises chain?"`
	sources := []Source{{Topic: "JavaScript"}, {Topic: "SQL"}}

	cands, err := parseCandidates(text, llm.StopEnd, sources)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	require.Equal(t, "What is a closure in JavaScript?", cands[0].QuestionText)
	require.Equal(t, "B", cands[0].CorrectOption)
	require.Equal(t, "Option C", cands[0].Options["C"])
	require.Equal(t, "JavaScript", cands[1].Topic)
}

func TestParseScrapeCapsMatches(t *testing.T) {
	text := ""
	for i := 0; i < 8; i++ {
		text += `"question_text": "question", `
	}
	cands, err := parseCandidates(text, llm.StopEnd, nil)
	require.NoError(t, err)
	require.Len(t, cands, maxScrapedCandidates)
}

func TestParseRejectsProse(t *testing.T) {
	_, err := parseCandidates("Sorry, I cannot help with that.", llm.StopEnd, nil)
	var invalid *llm.ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
}

func TestSimilarity(t *testing.T) {
	require.Equal(t, 1.0, Similarity("What does useState return", "what DOES usestate   return"))
	require.Equal(t, 0.0, Similarity("alpha beta", "gamma delta"))
	require.InDelta(t, 1.0/3.0, Similarity("a b", "a c"), 1e-9)
	require.Equal(t, 0.0, Similarity("", ""))

	sources := []Source{{QuestionText: "What does React useState return?"}}
	require.True(t, tooSimilar("What does React useState return?", sources))
	require.False(t, tooSimilar("Which pair does the state hook hand back in a form?", sources))
}
