package domain

import (
	"regexp"
	"strings"
)

// VerificationResult is derived from a verify-mode answer and never stored as is.
type VerificationResult struct {
	Passed      bool     `json:"passed"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

type Verdict int

const (
	VerdictFail Verdict = iota
	VerdictPass
)

// VerdictMarker is one recognised surface form of a verdict.
type VerdictMarker struct {
	Name    string
	Verdict Verdict
	Pattern *regexp.Regexp
}

// VerdictMarkers lists every recognised verdict form. Extend it here; no
// other code needs to change. A pass pattern must never match inside a fail
// marker.
var VerdictMarkers = []VerdictMarker{
	{"bracketed-en-pass", VerdictPass, regexp.MustCompile(`(?i)\[VERDICT:\s*PASS\]`)},
	{"bracketed-ru-pass", VerdictPass, regexp.MustCompile(`(?i)\[ЗАЧТЕНО\]`)},
	{"labeled-ru-pass", VerdictPass, regexp.MustCompile(`(?i)ВЕРДИКТ:\s*ЗАЧТЕНО`)},
	{"banner-ru-pass", VerdictPass, regexp.MustCompile(`(?i)---\s*ЗАЧТЕНО\s*---`)},

	{"bracketed-en-fail", VerdictFail, regexp.MustCompile(`(?i)\[VERDICT:\s*FAIL\]`)},
	{"bracketed-ru-fail", VerdictFail, regexp.MustCompile(`(?i)\[НЕ ЗАЧТЕНО\]`)},
	{"labeled-ru-fail", VerdictFail, regexp.MustCompile(`(?i)ВЕРДИКТ:\s*НЕ ЗАЧТЕНО`)},
	{"banner-ru-fail", VerdictFail, regexp.MustCompile(`(?i)---\s*НЕ ЗАЧТЕНО\s*---`)},
}

const maxSuggestions = 3

var (
	suggestionLine   = regexp.MustCompile(`(?m)^[\-\*]\s+.+$`)
	suggestionBullet = regexp.MustCompile(`^[\-\*]\s+`)
)

// ParseVerification grades the accumulated text of a verify-mode answer.
// Ambiguous or missing verdicts fail closed.
func ParseVerification(text string) VerificationResult {
	var passed, failed bool
	for _, m := range VerdictMarkers {
		if !m.Pattern.MatchString(text) {
			continue
		}
		if m.Verdict == VerdictPass {
			passed = true
		} else {
			failed = true
		}
	}

	suggestions := []string{}
	for _, line := range suggestionLine.FindAllString(text, maxSuggestions) {
		line = strings.TrimRight(line, "\r")
		suggestions = append(suggestions, suggestionBullet.ReplaceAllString(line, ""))
	}

	return VerificationResult{
		Passed:      passed && !failed,
		Feedback:    stripVerdictMarkers(text),
		Suggestions: suggestions,
	}
}

// stripVerdictMarkers removes markers until none are left, so that a marker
// assembled from the pieces around a removed one is removed as well.
func stripVerdictMarkers(text string) string {
	for {
		stripped := text
		// fail markers first: they are the longer forms
		for i := len(VerdictMarkers) - 1; i >= 0; i-- {
			stripped = VerdictMarkers[i].Pattern.ReplaceAllString(stripped, "")
		}
		if stripped == text {
			return strings.TrimSpace(stripped)
		}
		text = stripped
	}
}
