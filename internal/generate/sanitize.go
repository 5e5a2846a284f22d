package generate

import (
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("```json\\n?")
	anyFence  = regexp.MustCompile("```\\n?")
)

// Sanitize strips Markdown code fences and surrounding whitespace from model
// output. It never fails, and Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	// Removing one fence can join stray backticks into a new one.
	for strings.Contains(s, "```") {
		s = jsonFence.ReplaceAllString(s, "")
		s = anyFence.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
