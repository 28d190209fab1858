package prompt

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

const (
	segmentAverageInstruction = "Calculate the average order value for each customer segment using subquery to calculate order totals first"
	segmentValueInstruction   = "Calculate average order value by customer segment with proper subquery aggregation"
	monthlyTrendInstruction   = "Show monthly sales trends with year and month grouping"
)

// DateContext holds the date boundaries rendered into a prompt.
type DateContext struct {
	Today        time.Time
	QuarterStart time.Time
	QuarterEnd   time.Time
	YearStart    time.Time
}

// NewDateContext derives the boundaries from now, in now's location.
// QuarterStart is the first day of the month three months back and
// QuarterEnd the first day of the current month.
func NewDateContext(now time.Time) DateContext {
	y, m, d := now.Date()
	loc := now.Location()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return DateContext{
		Today:        today,
		QuarterStart: time.Date(y, m-3, 1, 0, 0, 0, 0, loc),
		QuarterEnd:   time.Date(y, m, 1, 0, 0, 0, 0, loc),
		YearStart:    time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
	}
}

// Normalize rewrites phrasings the generator tends to get wrong into an
// explicit instruction. Only the first matching rule applies.
func Normalize(query string) string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "average order value") && strings.Contains(lower, "customer segment"):
		return segmentAverageInstruction
	case strings.Contains(lower, "order value") && strings.Contains(lower, "segment"):
		return segmentValueInstruction
	case strings.Contains(lower, "monthly") && strings.Contains(lower, "trend"):
		return monthlyTrendInstruction
	default:
		return query
	}
}

// Prompt is a fully rendered generator input.
type Prompt struct {
	Text            string
	NormalizedQuery string
	Dates           DateContext
}

// Builder renders prompts. The zero value uses time.Now.
type Builder struct {
	Now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{Now: time.Now}
}

func (b *Builder) Build(query string) Prompt {
	now := time.Now
	if b != nil && b.Now != nil {
		now = b.Now
	}
	normalized := Normalize(query)
	dates := NewDateContext(now())
	return Prompt{
		Text:            render(normalized, dates),
		NormalizedQuery: normalized,
		Dates:           dates,
	}
}

func render(query string, dates DateContext) string {
	var sb strings.Builder
	sb.WriteString("You are a PostgreSQL expert. Translate the following natural language query to SQL.\n\n")
	fmt.Fprintf(&sb, "Schema: %s\n\n", SchemaDocument)
	fmt.Fprintf(&sb, "Natural Language Query: %s\n\n", query)
	sb.WriteString("Date Context:\n")
	fmt.Fprintf(&sb, "- Today: %s\n", dates.Today.Format(dateLayout))
	fmt.Fprintf(&sb, "- Last quarter: %s to %s\n", dates.QuarterStart.Format(dateLayout), dates.QuarterEnd.Format(dateLayout))
	fmt.Fprintf(&sb, "- This year: %s to %s\n\n", dates.YearStart.Format(dateLayout), dates.Today.Format(dateLayout))
	sb.WriteString(`CRITICAL RULES:
1. Return ONLY ONE executable SQL statement
2. NO explanations, NO comments, NO alternative queries
3. NO "OR" statements, NO multiple options
4. ALWAYS use JOINs when accessing data from multiple tables
5. For "list all customers" queries, use: SELECT * FROM customers;
6. Use table aliases: p for products, s for sales, c for customers
7. For nested aggregation, use subqueries or CTEs

CORRECT Examples:
`)
	for _, example := range Examples {
		fmt.Fprintf(&sb, "- %q:\n  %s\n\n", example.Request, example.SQL)
	}
	sb.WriteString("Return only the SQL query without any explanations:\n")
	return sb.String()
}
