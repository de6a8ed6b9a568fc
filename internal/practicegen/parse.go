package practicegen

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/llm"
)

const maxScrapedCandidates = 5

var questionTextRe = regexp.MustCompile(`"question_text"\s*:\s*"([^"]+)"`)

// parseCandidates turns raw model output into candidates. When the output is
// not a decodable array it scrapes question_text values and gives them placeholder options.
func parseCandidates(text, stopReason string, sources []Source) ([]Candidate, error) {
	body := stripFences(text)
	if span, ok := extractArray(body, stopReason == llm.StopMaxTokens); ok {
		if cands, err := decodeCandidates(span); err == nil {
			return cands, nil
		}
	}
	cands := scrapeCandidates(body, sources)
	if len(cands) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: text, Err: errors.New("no question array in response")}
	}
	return cands, nil
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractArray returns the outermost [...] span. A truncated response is
// closed after the last complete object that leaves the array valid.
func extractArray(text string, truncated bool) (string, bool) {
	start := strings.Index(text, "[")
	if start < 0 {
		return "", false
	}
	if end := strings.LastIndex(text, "]"); end > start && !truncated {
		return text[start : end+1], true
	}
	cut := len(text)
	for {
		cut = lastObjectEnd(text[:cut])
		if cut <= start {
			break
		}
		repaired := text[start:cut+1] + "]"
		if json.Valid([]byte(repaired)) {
			return repaired, true
		}
	}
	if end := strings.LastIndex(text, "]"); end > start {
		return text[start : end+1], true
	}
	return "", false
}

// lastObjectEnd finds the last '}' followed by a comma, or -1.
func lastObjectEnd(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '}' {
			continue
		}
		rest := strings.TrimLeftFunc(s[i+1:], unicode.IsSpace)
		if strings.HasPrefix(rest, ",") {
			return i
		}
	}
	return -1
}

type rawCandidate struct {
	QuestionText  string          `json:"question_text"`
	Options       json.RawMessage `json:"options"`
	CorrectOption string          `json:"correct_option"`
	Topic         string          `json:"topic"`
}

func decodeCandidates(span string) ([]Candidate, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		var rc rawCandidate
		if err := json.Unmarshal(item, &rc); err != nil {
			continue
		}
		out = append(out, Candidate{
			QuestionText:  strings.TrimSpace(rc.QuestionText),
			Options:       decodeOptions(rc.Options),
			CorrectOption: strings.ToUpper(strings.TrimSpace(rc.CorrectOption)),
			Topic:         strings.TrimSpace(rc.Topic),
		})
	}
	return out, nil
}

// decodeOptions accepts {"A": "..."}, [{"key": "A", "text": "..."}] or a plain list of four strings.
func decodeOptions(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]string
	if err := json.Unmarshal(raw, &obj); err == nil {
		out := make(map[string]string, len(obj))
		for k, v := range obj {
			out[strings.ToUpper(strings.TrimSpace(k))] = v
		}
		return out
	}
	var keyed []struct {
		Key  string `json:"key"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &keyed); err == nil && len(keyed) > 0 && keyed[0].Key != "" {
		out := make(map[string]string, len(keyed))
		for _, o := range keyed {
			out[strings.ToUpper(strings.TrimSpace(o.Key))] = o.Text
		}
		return out
	}
	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil && len(plain) == len(catalog.Letters) {
		out := make(map[string]string, len(plain))
		for i, text := range plain {
			out[catalog.Letters[i]] = text
		}
		return out
	}
	return nil
}

func scrapeCandidates(text string, sources []Source) []Candidate {
	matches := questionTextRe.FindAllStringSubmatch(text, maxScrapedCandidates)
	if len(matches) == 0 {
		return nil
	}
	topic := ""
	if len(sources) > 0 {
		topic = sources[0].Topic
	}
	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, Candidate{
			QuestionText: strings.TrimSpace(m[1]),
			Options: map[string]string{
				"A": "Option A",
				"B": "Option B",
				"C": "Option C",
				"D": "Option D",
			},
			CorrectOption: "B",
			Topic:         topic,
		})
	}
	return out
}
