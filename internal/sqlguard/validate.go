package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

type SafetyKind string

const (
	NotReadOnly        SafetyKind = "NOT_READ_ONLY"
	DangerousOperation SafetyKind = "DANGEROUS_OPERATION"
)

var dangerousPattern = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|EXEC|EXECUTE)\b`)

var commentMarkers = []string{"--", "/*", "*/"}

// SafetyError reports a statement that must not be executed.
type SafetyError struct {
	Kind    SafetyKind
	Keyword string
	SQL     string
}

func (e *SafetyError) Error() string {
	switch e.Kind {
	case NotReadOnly:
		return "Only SELECT queries are allowed"
	case DangerousOperation:
		return fmt.Sprintf("Query contains potentially dangerous SQL operations (%s)", e.Keyword)
	default:
		return "query rejected by safety validation"
	}
}

// Report carries advisory findings for a statement that passed validation.
type Report struct {
	Warnings []string
}

// Validate admits statements that start with SELECT or WITH and contain none
// of the mutating keywords. Comment markers are reported, not rejected.
func Validate(statement string) (Report, error) {
	upper := strings.ToUpper(strings.TrimSpace(statement))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return Report{}, &SafetyError{Kind: NotReadOnly, SQL: statement}
	}
	if match := dangerousPattern.FindString(upper); match != "" {
		return Report{}, &SafetyError{Kind: DangerousOperation, Keyword: match, SQL: statement}
	}

	var report Report
	for _, marker := range commentMarkers {
		if strings.Contains(statement, marker) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("statement contains comment marker %q", marker))
		}
	}
	return report, nil
}
