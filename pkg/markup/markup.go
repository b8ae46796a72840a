// Package markup renders assistant answers as simple HTML. The
// substitutions are independent of each other and of application order.
package markup

import (
	"regexp"
	"strings"
)

var (
	boldPattern      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	numberedPattern  = regexp.MustCompile(`(?m)(\d+\.\s)(.*)$`)
	dashPattern      = regexp.MustCompile(`(?m)^\s*-\s+`)
	sectionPattern   = regexp.MustCompile(`(SOP Document:|FDA Guidelines:)`)
	headingPattern   = regexp.MustCompile(`(Information from .*?:|Discrepancies:|Unanswered Aspects:)`)
	sourcePattern    = regexp.MustCompile(`\(Source:.*?\)`)
	paragraphPattern = regexp.MustCompile(`\n\n`)
)

// FormatAnswer converts the plain-text answer into display HTML:
// bold markers become <strong>, numbered lines become list rows,
// leading dash bullets are stripped, blank lines break paragraphs,
// known section labels become headings, and source references are
// set off in a smaller block. An empty answer formats to "".
func FormatAnswer(text string) string {
	if text == "" {
		return ""
	}

	out := boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
	out = numberedPattern.ReplaceAllString(out, `<div class="list-row"><span class="list-marker">$1</span><span>$2</span></div>`)
	out = dashPattern.ReplaceAllString(out, "")
	out = paragraphPattern.ReplaceAllString(out, "</p><p>")
	out = sectionPattern.ReplaceAllString(out, `</p><p><span class="section-label">$1</span>`)
	out = headingPattern.ReplaceAllString(out, `<span class="heading">$1</span>`)
	out = sourcePattern.ReplaceAllString(out, `<span class="source-ref">$0</span>`)

	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(out)
	b.WriteString("</p>")
	return b.String()
}
