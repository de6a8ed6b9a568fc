package practicegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/examgenius-backend/internal/llm"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

// Enricher proposes candidate questions for the given concept gaps.
type Enricher interface {
	Enrich(ctx context.Context, sources []Source, n int) ([]Candidate, error)
	Model() string
}

type LLMEnricherConfig struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

func DefaultLLMEnricherConfig() LLMEnricherConfig {
	return LLMEnricherConfig{
		Timeout:     45 * time.Second,
		MaxTokens:   4000,
		Temperature: 0.7,
	}
}

// LLMEnricher asks a language model for new questions covering the same concepts.
type LLMEnricher struct {
	provider llm.Provider
	cfg      LLMEnricherConfig
	log      *logger.Logger
}

func NewLLMEnricher(provider llm.Provider, cfg LLMEnricherConfig, baseLog *logger.Logger) *LLMEnricher {
	def := DefaultLLMEnricherConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	return &LLMEnricher{provider: provider, cfg: cfg, log: baseLog.With("component", "LLMEnricher")}
}

func (e *LLMEnricher) Model() string {
	if e.provider == nil {
		return ""
	}
	return e.provider.ModelID()
}

// Enrich returns no candidates and an upstream error on any failure.
func (e *LLMEnricher) Enrich(ctx context.Context, sources []Source, n int) ([]Candidate, error) {
	if e.provider == nil {
		return nil, apierr.Upstream("practice enrichment", llm.ErrMissingAPIKey)
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req := llm.UserPrompt(buildPrompt(sources, n), e.cfg.MaxTokens, e.cfg.Temperature)
	req.System = systemPrompt

	start := time.Now()
	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, apierr.Upstream("practice enrichment", err)
	}
	e.log.Debug("llm response received",
		"model", resp.Model,
		"stop_reason", resp.StopReason,
		"output_tokens", resp.Usage.OutputTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	cands, err := parseCandidates(resp.Text, resp.StopReason, sources)
	if err != nil {
		return nil, apierr.Upstream("practice enrichment", err)
	}
	return cands, nil
}

const systemPrompt = "You are ExamGenius AI. You write NEW practice questions that test the same concepts " +
	"a candidate got wrong, using completely different wording, examples and scenarios. " +
	"Never copy the original questions. Respond with a JSON array only."

func buildPrompt(sources []Source, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d new multiple-choice practice questions for a software engineering interview.\n", n)
	b.WriteString("Each question must test the same concept as one of the gaps below, with a different scenario and phrasing.\n")
	b.WriteString("Do not repeat the original questions. Spread the correct answer across A, B, C and D.\n\n")
	b.WriteString("CONCEPT GAPS:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. Topic: %s\n", i+1, s.Topic)
		fmt.Fprintf(&b, "   Chose %q instead of %q\n", orUnknown(s.WrongChoice), orUnknown(s.CorrectChoice))
	}
	b.WriteString(`
Respond with a JSON array in this shape:
[
  {
    "question_text": "new question",
    "options": {"A": "...", "B": "...", "C": "...", "D": "..."},
    "correct_option": "A",
    "topic": "topic of the concept gap"
  }
]`)
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
