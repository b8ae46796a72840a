package normalize

import (
	"strings"
)

// Placeholder texts when a summary is missing entirely.
const (
	fdaNotAvailable = "FDA requirement not available"
	sopNotAvailable = "SOP detail not available"
)

// titleRules map issue keywords to canonical card titles. Order matters:
// the first matching rule wins, so an issue mentioning both "training"
// and "validation" titles as a validation issue.
var titleRules = []struct {
	keywords []string
	title    string
}{
	{[]string{"validation"}, "Validation Process"},
	{[]string{"calibration", "equipment"}, "Equipment Calibration Requirements"},
	{[]string{"training", "personnel"}, "Personnel Training Documentation"},
	{[]string{"document", "documentation"}, "Documentation Requirements"},
	{[]string{"process", "procedure"}, "Process Requirements"},
	{[]string{"quality"}, "Quality Control Requirements"},
	{[]string{"record"}, "Record Keeping Requirements"},
}

// extractKeywords is the shared vocabulary used to pull issue-relevant
// sentences out of a full summary.
var extractKeywords = []string{
	"validation", "calibration", "equipment", "training", "personnel",
	"document", "process", "quality", "record", "procedure",
}

// finding is one issue in either the legacy (bare string) or the
// structured upstream format. Structured findings carry their own
// category and excerpts, which take precedence over heuristics.
type finding struct {
	issue          string
	structured     bool
	category       string
	fdaRequirement string
	sopDetail      string
}

// classify derives the card title and the two excerpts for a single
// finding. Structured findings supply pre-computed fields; legacy
// findings fall back to keyword heuristics against the object-level
// summaries.
func classify(f finding, fallbackFDA, fallbackSOP, baseTitle string) (title, fda, sop string) {
	if f.structured {
		title = f.category
		if title == "" {
			title = deriveTitle(f.issue, baseTitle)
		}
		fda = f.fdaRequirement
		if fda == "" {
			fda = fallbackFDA
		}
		sop = f.sopDetail
		if sop == "" {
			sop = fallbackSOP
		}
		return title, fda, sop
	}

	title = deriveTitle(f.issue, baseTitle)
	fda = extractRelevant(f.issue, fallbackFDA, fdaNotAvailable)
	sop = extractRelevant(f.issue, fallbackSOP, sopNotAvailable)
	return title, fda, sop
}

// deriveTitle picks a canonical title from the first keyword rule whose
// keywords appear in the issue text. Matching is case-insensitive; when
// nothing matches the base title is kept unchanged.
func deriveTitle(issue, baseTitle string) string {
	lower := strings.ToLower(issue)
	for _, rule := range titleRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.title
			}
		}
	}
	return baseTitle
}

// extractRelevant returns the sentences of fullText that share at least
// one vocabulary keyword with the issue text, joined by single spaces.
// An empty fullText yields the placeholder; no matching sentence yields
// fullText unmodified. This is deliberately coarse sentence retrieval,
// not semantic matching.
func extractRelevant(issue, fullText, placeholder string) string {
	if fullText == "" {
		return placeholder
	}

	lowerIssue := strings.ToLower(issue)
	var matching []string
	for _, sentence := range splitSentences(fullText) {
		lowerSentence := strings.ToLower(sentence)
		for _, keyword := range extractKeywords {
			if strings.Contains(lowerIssue, keyword) && strings.Contains(lowerSentence, keyword) {
				matching = append(matching, sentence)
				break
			}
		}
	}

	if len(matching) > 0 {
		return strings.Join(matching, " ")
	}
	return fullText
}

// splitSentences splits on whitespace that immediately follows sentence
// terminal punctuation, keeping the punctuation with the preceding
// sentence. Text without such boundaries comes back as one sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			j := i + 1
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			if j > i+1 {
				sentences = append(sentences, text[start:i+1])
				start = j
				i = j - 1
			}
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
