package assistant

import (
	"strings"
	"time"

	"github.com/bizlens/bizlens/internal/query"
)

type QueryType string

const (
	Aggregation  QueryType = "AGGREGATION"
	SortedList   QueryType = "SORTED_LIST"
	Relationship QueryType = "RELATIONSHIP"
	SimpleSelect QueryType = "SIMPLE_SELECT"
)

type Metadata struct {
	RowCount        int       `json:"row_count"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	ColumnNames     []string  `json:"column_names"`
	QueryType       QueryType `json:"query_type"`
}

// ClassifyQuery reports the coarse shape of an executed statement.
func ClassifyQuery(sqlText string) QueryType {
	upper := strings.ToUpper(strings.TrimSpace(sqlText))
	switch {
	case strings.Contains(upper, "GROUP BY"):
		return Aggregation
	case strings.Contains(upper, "ORDER BY"):
		return SortedList
	case strings.Contains(upper, "JOIN"):
		return Relationship
	default:
		return SimpleSelect
	}
}

// BuildMetadata derives metadata from the executed statement and its rows.
// Column names come from the first row only.
func BuildMetadata(sqlText string, rows []query.Row, elapsed time.Duration) Metadata {
	columns := []string{}
	if len(rows) > 0 {
		columns = rows[0].Columns()
	}
	return Metadata{
		RowCount:        len(rows),
		ExecutionTimeMs: elapsed.Milliseconds(),
		ColumnNames:     columns,
		QueryType:       ClassifyQuery(sqlText),
	}
}
