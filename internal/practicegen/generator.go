package practicegen

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/domain/practice"
	"github.com/yungbote/examgenius-backend/internal/llm"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

var candidateSchema = &llm.Schema{
	Name: "practice_candidate",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"question_text", "options", "correct_option", "topic"},
		"properties": map[string]any{
			"question_text": map[string]any{"type": "string", "pattern": `\S`},
			"options": map[string]any{
				"type":                 "object",
				"required":             []string{"A", "B", "C", "D"},
				"additionalProperties": false,
				"properties": map[string]any{
					"A": map[string]any{"type": "string", "pattern": `\S`},
					"B": map[string]any{"type": "string", "pattern": `\S`},
					"C": map[string]any{"type": "string", "pattern": `\S`},
					"D": map[string]any{"type": "string", "pattern": `\S`},
				},
			},
			"correct_option": map[string]any{"enum": []string{"A", "B", "C", "D"}},
			"topic":          map[string]any{"type": "string", "pattern": `\S`},
		},
	},
}

type Generator struct {
	enricher Enricher
	shuffler *Shuffler
	log      *logger.Logger
}

type Option func(*Generator)

// WithShuffler replaces the randomly seeded shuffler, mainly for tests.
func WithShuffler(s *Shuffler) Option {
	return func(g *Generator) { g.shuffler = s }
}

// New builds a Generator. A nil enricher means template questions only.
func New(enricher Enricher, baseLog *logger.Logger, opts ...Option) *Generator {
	g := &Generator{
		enricher: enricher,
		log:      baseLog.With("component", "PracticeGenerator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.shuffler == nil {
		g.shuffler = NewShuffler(nil)
	}
	return g
}

// Generate returns exactly ClampCount(n) questions. Enrichment failures are logged and absorbed.
func (g *Generator) Generate(ctx context.Context, sources []Source, n int) Result {
	n = ClampCount(n)
	if len(sources) > MaxSources {
		sources = sources[:MaxSources]
	}
	if len(sources) == 0 {
		sources = []Source{{Topic: "General"}}
	}

	var res Result
	accepted := make([]Question, 0, n)

	if g.enricher != nil {
		cands, err := g.enricher.Enrich(ctx, sources, n)
		if err != nil {
			g.log.Warn("practice enrichment failed, falling back to templates", "error", err, "sources", len(sources))
		}
		rejected := 0
		for _, c := range cands {
			if len(accepted) == n {
				break
			}
			q, ok := g.accept(c, sources)
			if !ok {
				rejected++
				continue
			}
			accepted = append(accepted, q)
		}
		res.FromLLM = len(accepted)
		if res.FromLLM > 0 {
			res.Model = g.enricher.Model()
		}
		if rejected > 0 {
			g.log.Debug("rejected practice candidates", "rejected", rejected, "accepted", res.FromLLM)
		}
	}

	for i := 0; len(accepted) < n && i < TemplateCount; i++ {
		accepted = append(accepted, templateQuestion(i, sources))
		res.FromTemplates++
	}

	base := len(accepted)
	for i := 0; len(accepted) < n; i++ {
		accepted = append(accepted, variantOf(accepted[i%base]))
		res.Variants++
	}

	for i := range accepted {
		q := &accepted[i]
		q.Options, q.CorrectOption = g.shuffler.Shuffle(q.Options, q.CorrectOption)
		q.NegativeMark = NegativeMark
		q.TimeLimitSeconds = TimeLimitSeconds
	}
	res.Questions = accepted
	return res
}

// accept validates c against the candidate schema and the similarity filter.
func (g *Generator) accept(c Candidate, sources []Source) (Question, bool) {
	raw, err := json.Marshal(c)
	if err != nil {
		return Question{}, false
	}
	if err := llm.ValidateJSON(candidateSchema, raw); err != nil {
		g.log.Debug("practice candidate failed validation", "error", err)
		return Question{}, false
	}
	if tooSimilar(c.QuestionText, sources) {
		return Question{}, false
	}
	var opts catalog.Options
	for _, l := range catalog.Letters {
		opts.Set(l, strings.TrimSpace(c.Options[l]))
	}
	return Question{
		QuestionText:  c.QuestionText,
		Options:       opts,
		CorrectOption: c.CorrectOption,
		Topic:         c.Topic,
		Origin:        practice.SourceLLM,
	}, true
}
