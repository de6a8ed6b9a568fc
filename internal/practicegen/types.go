// Package practicegen builds practice questions from the questions a user got wrong.
//
// Candidates come from an optional Enricher (an LLM) and are topped up with
// template questions and variants, so Generate always returns the requested
// number of questions.
package practicegen

import (
	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
)

const (
	DefaultCount = 10
	MaxCount     = 50
	// MaxSources caps how many wrong answers feed a single generation.
	MaxSources = 10

	NegativeMark     = 2.0
	TimeLimitSeconds = 30
)

// Source is one concept gap: a question the user answered incorrectly.
type Source struct {
	QuestionID    uuid.UUID
	Topic         string
	QuestionText  string
	WrongChoice   string
	CorrectChoice string
}

// Candidate is a question as proposed by an Enricher, before validation.
type Candidate struct {
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correct_option"`
	Topic         string            `json:"topic"`
}

// Question is a validated, normalized practice question.
type Question struct {
	QuestionText     string
	Options          catalog.Options
	CorrectOption    string
	Topic            string
	NegativeMark     float64
	TimeLimitSeconds int
	// Origin is one of practice.SourceLLM, SourceTemplate or SourceVariant.
	Origin string
}

type Result struct {
	Questions     []Question
	FromLLM       int
	FromTemplates int
	Variants      int
	Model         string
}

// ClampCount maps a requested count into [1, MaxCount], treating non-positive values as DefaultCount.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n > MaxCount:
		return MaxCount
	}
	return n
}
