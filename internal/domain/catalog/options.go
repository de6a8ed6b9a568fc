package catalog

import "strings"

// Letters are the option keys every question carries, in display order.
var Letters = [4]string{"A", "B", "C", "D"}

// Options holds the four lettered choices of a question.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

func (o Options) Get(letter string) string {
	switch letter {
	case "A":
		return o.A
	case "B":
		return o.B
	case "C":
		return o.C
	case "D":
		return o.D
	}
	return ""
}

func (o *Options) Set(letter, text string) {
	switch letter {
	case "A":
		o.A = text
	case "B":
		o.B = text
	case "C":
		o.C = text
	case "D":
		o.D = text
	}
}

// Slice returns the option texts ordered A through D.
func (o Options) Slice() [4]string {
	return [4]string{o.A, o.B, o.C, o.D}
}

func OptionsFrom(texts [4]string) Options {
	return Options{A: texts[0], B: texts[1], C: texts[2], D: texts[3]}
}

// Complete reports whether all four options carry non-blank text.
func (o Options) Complete() bool {
	for _, s := range o.Slice() {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

// ValidLetter reports whether s is one of A, B, C or D.
func ValidLetter(s string) bool {
	switch s {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// LetterIndex maps A..D to 0..3, returning -1 otherwise.
func LetterIndex(s string) int {
	for i, l := range Letters {
		if l == s {
			return i
		}
	}
	return -1
}
