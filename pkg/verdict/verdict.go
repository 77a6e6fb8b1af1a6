package verdict

import (
	"strings"
	"unicode/utf8"
)

// Marker phrases the model is asked to open its answer with.
const (
	MarkerNotVegan    = "NOT VEGAN"
	MarkerLikelyVegan = "LIKELY VEGAN"
	MarkerCaution     = "CAUTION"
)

type Kind string

const (
	KindNotVegan    Kind = "not_vegan"
	KindLikelyVegan Kind = "likely_vegan"
	KindCaution     Kind = "caution"
	KindUnknown     Kind = "unknown"
)

// Style is the banner colour the presentation layer renders.
type Style string

const (
	StyleError   Style = "error"
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleInfo    Style = "info"
)

// SummaryLimit caps the rune length of Verdict.Summary.
const SummaryLimit = 120

type Verdict struct {
	Kind    Kind   `json:"kind"`
	Style   Style  `json:"style"`
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

// markers are checked in order; the first one found decides.
var markers = []struct {
	phrase string
	kind   Kind
	style  Style
}{
	{MarkerNotVegan, KindNotVegan, StyleError},
	{MarkerLikelyVegan, KindLikelyVegan, StyleSuccess},
	{MarkerCaution, KindCaution, StyleWarning},
}

// Classify picks a display style from free-form model output.
func Classify(text string) Verdict {
	v := Verdict{
		Kind:    KindUnknown,
		Style:   StyleInfo,
		Text:    text,
		Summary: Summarize(text),
	}
	for _, m := range markers {
		if strings.Contains(text, m.phrase) {
			v.Kind = m.kind
			v.Style = m.style
			break
		}
	}
	return v
}

// StyleOf maps a kind back to its banner style.
func StyleOf(k Kind) Style {
	for _, m := range markers {
		if m.kind == k {
			return m.style
		}
	}
	return StyleInfo
}

// Summarize returns the first non-empty line, cut to SummaryLimit runes.
func Summarize(text string) string {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if utf8.RuneCountInString(line) <= SummaryLimit {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:SummaryLimit-1])) + "…"
}
