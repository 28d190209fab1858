package query

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field is one named value in a result row.
type Field struct {
	Name  string
	Value any
}

// Row is an ordered column-name to value mapping, in the order the engine
// returned the columns.
type Row []Field

func (r Row) Columns() []string {
	names := make([]string, len(r))
	for i, field := range r {
		names[i] = field.Name
	}
	return names
}

func (r Row) Get(name string) (any, bool) {
	for _, field := range r {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the row as a JSON object preserving column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", field.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Executor runs one validated read-only statement.
type Executor interface {
	Query(ctx context.Context, sqlText string) ([]Row, error)
}

// DBError is a failure reported by the database engine. Message is the
// engine's text and is what callers pattern-match on.
type DBError struct {
	Message string
	Code    string
	Err     error
}

func (e *DBError) Error() string {
	return e.Message
}

func (e *DBError) Unwrap() error {
	return e.Err
}

// ScanRows drains rows into ordered Row values. NUMERIC and DECIMAL
// columns come back as JSON numbers even when the driver hands them over
// as text.
func ScanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("query column types: %w", err)
	}
	decimal := make([]bool, len(columns))
	for i, columnType := range types {
		decimal[i] = isDecimalType(columnType.DatabaseTypeName())
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			row[i] = Field{Name: column, Value: normalizeValue(values[i], decimal[i])}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// isDecimalType matches Postgres "NUMERIC" and DuckDB "DECIMAL(18,3)".
func isDecimalType(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	return name == "NUMERIC" || name == "DECIMAL" || strings.HasPrefix(name, "DECIMAL(") || strings.HasPrefix(name, "NUMERIC(")
}

func normalizeValue(value any, decimal bool) any {
	switch typed := value.(type) {
	case []byte:
		return normalizeValue(string(typed), decimal)
	case string:
		if decimal {
			return parseDecimal(typed)
		}
		return typed
	case time.Time:
		if typed.Hour() == 0 && typed.Minute() == 0 && typed.Second() == 0 && typed.Nanosecond() == 0 {
			return typed.Format("2006-01-02")
		}
		return typed
	case interface{ Float64() float64 }:
		return typed.Float64()
	default:
		return typed
	}
}

// parseDecimal keeps the text when it has no finite float form, such as
// the NUMERIC value 'NaN'.
func parseDecimal(text string) any {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return text
	}
	return f
}
