package sqlguard

import (
	"errors"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain statement",
			raw:  "SELECT * FROM customers;",
			want: "SELECT * FROM customers",
		},
		{
			name: "markdown fence",
			raw:  "```sql\nSELECT id\nFROM products;\n```",
			want: "SELECT id FROM products",
		},
		{
			name: "preamble and alternatives",
			raw: "To answer this you need revenue per product.\n" +
				"SELECT p.product_name, SUM(s.revenue) AS total_revenue\n" +
				"FROM products p JOIN sales s ON p.id = s.product_id\n" +
				"GROUP BY p.product_name;\n" +
				"OR\n" +
				"SELECT product_id FROM sales;",
			want: "SELECT p.product_name, SUM(s.revenue) AS total_revenue FROM products p JOIN sales s ON p.id = s.product_id GROUP BY p.product_name",
		},
		{
			name: "or line without semicolon",
			raw:  "SELECT region FROM sales\nor\nSELECT city FROM customers",
			want: "SELECT region FROM sales",
		},
		{
			name: "skips explanatory lines inside statement",
			raw:  "WITH totals AS (SELECT 1 AS n)\nNote: this is a CTE\nSELECT n FROM totals;",
			want: "WITH totals AS (SELECT 1 AS n) SELECT n FROM totals",
		},
		{
			name: "lowercase start keyword",
			raw:  "select count(*) from sales;",
			want: "select count(*) from sales",
		},
		{
			name: "fallback finds inline select",
			raw:  "Here is the query: SELECT * FROM products; hope it helps",
			want: "SELECT * FROM products",
		},
		{
			name: "fallback stops at line break",
			raw:  "The answer is select id from customers\nthanks",
			want: "select id from customers",
		},
		{
			name: "fallback to end of text",
			raw:  "Query => SELECT 1",
			want: "SELECT 1",
		},
		{
			name: "mutating statement is still extracted",
			raw:  "DELETE FROM sales;",
			want: "DELETE FROM sales",
		},
		{
			name: "collapses whitespace",
			raw:  "SELECT   a,\n\t b\n FROM   t;",
			want: "SELECT a, b FROM t",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.raw)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Extract() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	first, err := Extract("SELECT c.customer_name FROM customers c ORDER BY c.customer_name")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	second, err := Extract(first)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if first != second {
		t.Fatalf("Extract() not idempotent: %q vs %q", first, second)
	}
}

func TestExtractFailsWithoutStatement(t *testing.T) {
	for _, raw := range []string{"", "   ", "I cannot answer that question.", "```\n```"} {
		_, err := Extract(raw)
		var extractionErr *ExtractionError
		if !errors.As(err, &extractionErr) {
			t.Fatalf("Extract(%q) error = %v, want ExtractionError", raw, err)
		}
		if extractionErr.Raw != raw {
			t.Fatalf("Raw = %q, want %q", extractionErr.Raw, raw)
		}
	}
}

func TestExtractionErrorIncludesRawText(t *testing.T) {
	_, err := Extract("no sql here")
	if err == nil || !strings.Contains(err.Error(), "no sql here") {
		t.Fatalf("error = %v", err)
	}
}
