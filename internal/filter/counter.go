package filter

import (
	"regexp"
	"strings"
)

// Comment markers recognized at the start of a changed line. Matching is
// line-local: no attempt is made to track block-comment state across lines.
var commentMarkers = []string{"//", "#", "/*", "*", "--", "<!--", ";"}

// Changed lines that only touch a version field or pin a dependency to a
// version, e.g. `+  "version": "1.2.3"` or `-lodash = "^4.17.0"`.
var versionLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^[+-]\s*"?version"?\s*[:=]`),
	regexp.MustCompile(`(?i)^[+-]\s*"?[\w@/.-]+"?\s*[:=]\s*"[\^~>=<]*v?\d+(\.\d+)+[\w.-]*"`),
}

// CountMeaningfulChanges counts added/removed lines in a unified diff that
// carry substance. Context lines, blank changes, comment-only changes, and
// pure whitespace changes are excluded. With strict set, lines that look
// like version bumps or dependency-manifest edits are excluded as well.
//
// This is a cheap line-local heuristic, not a diff parser: hunk headers and
// file boundaries are irrelevant because they never start with a bare +/-.
func CountMeaningfulChanges(diff string, strict bool) int {
	count := 0
	for _, line := range strings.Split(diff, "\n") {
		if !isChangedLine(line) {
			continue
		}
		if isMeaningful(line, strict) {
			count++
		}
	}
	return count
}

func isChangedLine(line string) bool {
	if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
		return false
	}
	return strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-")
}

func isMeaningful(line string, strict bool) bool {
	body := strings.TrimSpace(line[1:])
	if body == "" {
		return false
	}

	for _, marker := range commentMarkers {
		if strings.HasPrefix(body, marker) {
			return false
		}
	}

	// A line that reduces to a bare +/- once all whitespace is stripped is
	// an indentation or line-ending change only.
	if stripAllWhitespace(line) == "+" || stripAllWhitespace(line) == "-" {
		return false
	}

	if strict {
		for _, pattern := range versionLinePatterns {
			if pattern.MatchString(line) {
				return false
			}
		}
	}

	return true
}

func stripAllWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
