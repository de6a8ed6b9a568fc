package practicegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
	"github.com/yungbote/examgenius-backend/internal/domain/practice"
)

var questionTemplates = [...]string{
	"In {topic}, when implementing {concept}, what is the best approach?",
	"What happens when you use {concept} in {topic} development?",
	"Which of the following correctly demonstrates {concept} in {topic}?",
	"When working with {topic}, how should you handle {concept}?",
	"What is the primary purpose of {concept} in {topic}?",
	"In {topic} applications, when should you implement {concept}?",
	"Which statement about {concept} in {topic} is correct?",
	"How does {concept} work in the context of {topic}?",
	"What is the recommended way to use {concept} in {topic}?",
	"In {topic} development, what does {concept} provide?",
}

// TemplateCount is the size of the template pool; past it, gaps are filled with variants.
const TemplateCount = len(questionTemplates)

const variantPrefix = "[Advanced Practice] "

var practiceLabelRe = regexp.MustCompile(`Practice Question.*?:`)

func conceptFor(topic string) string {
	t := strings.ToLower(topic)
	switch {
	case strings.Contains(t, "react"):
		return "hooks"
	case strings.Contains(t, "javascript"):
		return "functions"
	case strings.Contains(t, "sql"):
		return "queries"
	}
	return "methods"
}

// templateQuestion builds the i-th fallback question, cycling through sources.
func templateQuestion(i int, sources []Source) Question {
	src := sources[i%len(sources)]
	concept := conceptFor(src.Topic)
	text := strings.NewReplacer("{topic}", src.Topic, "{concept}", concept).
		Replace(questionTemplates[i%TemplateCount])

	opts := catalog.Options{
		A: fmt.Sprintf("Using %s with proper syntax and best practices", concept),
		B: fmt.Sprintf("Implementing %s through alternative methods", concept),
		C: fmt.Sprintf("Applying %s in different contexts and scenarios", concept),
		D: fmt.Sprintf("Understanding %s fundamentals and core principles", concept),
	}
	correct := catalog.Letters[i%len(catalog.Letters)]
	opts.Set(correct, fmt.Sprintf("Correct implementation of %s in %s", concept, src.Topic))

	return Question{
		QuestionText:  text,
		Options:       opts,
		CorrectOption: correct,
		Topic:         src.Topic,
		Origin:        practice.SourceTemplate,
	}
}

func variantOf(q Question) Question {
	text := q.QuestionText
	if loc := practiceLabelRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + "Challenge Question:" + text[loc[1]:]
	}
	q.QuestionText = variantPrefix + text
	q.Origin = practice.SourceVariant
	return q
}
