// Package sqlguard turns free-form generator output into a single read-only
// SQL statement.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```(?:sql)?\\s*")

var statementStarts = []string{"SELECT", "WITH", "INSERT", "UPDATE", "DELETE"}

var proseStarts = []string{"to ", "if you", "note:", "explanation:", "for "}

var proseFragments = []string{"you can add", "filter results"}

// ExtractionError reports generator output with no recognizable statement.
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string {
	if strings.TrimSpace(e.Raw) == "" {
		return "empty response from text generator"
	}
	return fmt.Sprintf("could not extract valid SQL from generator response: %s", e.Raw)
}

// Extract returns the first plausible SQL statement in raw, whitespace
// collapsed and without a trailing semicolon. Text after a line reading
// exactly "OR" is treated as an alternative and ignored.
func Extract(raw string) (string, error) {
	text := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	if text == "" {
		return "", &ExtractionError{Raw: raw}
	}

	statement, found := scanLines(text)
	if !found || statement == "" {
		statement = scanForSelect(text)
	}

	statement = strings.Join(strings.Fields(statement), " ")
	statement = stripTrailingSemicolons(statement)
	if statement == "" {
		return "", &ExtractionError{Raw: raw}
	}
	return statement, nil
}

func scanLines(text string) (string, bool) {
	var sb strings.Builder
	found := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isProse(line) {
			continue
		}
		if strings.EqualFold(line, "OR") {
			break
		}
		if !found && startsStatement(line) {
			found = true
		}
		if !found {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte(' ')
		if strings.HasSuffix(line, ";") {
			break
		}
	}
	return strings.TrimSpace(sb.String()), found
}

func scanForSelect(text string) string {
	idx := strings.Index(asciiUpper(text), "SELECT")
	if idx < 0 {
		return ""
	}
	rest := text[idx:]
	if end := strings.Index(rest, ";"); end > 0 {
		return strings.TrimSpace(rest[:end+1])
	}
	if end := strings.Index(rest, "\n"); end > 0 {
		return strings.TrimSpace(rest[:end])
	}
	return strings.TrimSpace(rest)
}

func isProse(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range proseStarts {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, fragment := range proseFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func startsStatement(line string) bool {
	upper := asciiUpper(line)
	for _, keyword := range statementStarts {
		if strings.HasPrefix(upper, keyword) {
			return true
		}
	}
	return false
}

// asciiUpper upper-cases ASCII letters only so byte offsets stay aligned
// with the input.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
