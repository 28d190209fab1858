package assistant

import "strings"

const (
	productJoinFrom  = "FROM products p JOIN sales s ON p.id = s.product_id"
	customerJoinFrom = "FROM customers c JOIN sales s ON c.id = s.customer_id"
)

// classifyFailure maps a warehouse error message to a class. Order matters:
// the join classes must win over the generic "does not exist" check.
func classifyFailure(message string) ErrorClass {
	switch {
	case strings.Contains(message, `column "product_name" does not exist`),
		strings.Contains(message, `column "category" does not exist`):
		return MissingProductJoin
	case strings.Contains(message, `column "customer_name" does not exist`):
		return MissingCustomerJoin
	case strings.Contains(message, "relation") && strings.Contains(message, "does not exist"):
		return UnknownRelation
	case strings.Contains(message, "syntax error"):
		return SyntaxError
	case strings.Contains(message, "column") && strings.Contains(message, "must appear"):
		return GroupingError
	default:
		return Generic
	}
}

// RepairProductJoin rewrites a single-table sales query that references
// product columns into a products/sales join. It returns sqlText unchanged
// when the statement already joins, already reads products, or does not
// read sales.
func RepairProductJoin(sqlText string) string {
	upper := strings.ToUpper(sqlText)
	if strings.Contains(upper, "JOIN") || strings.Contains(upper, "FROM PRODUCTS") {
		return sqlText
	}
	if !strings.Contains(upper, "FROM SALES") {
		return sqlText
	}
	if !strings.Contains(sqlText, "product_name") && !strings.Contains(sqlText, "category") {
		return sqlText
	}

	out := strings.ReplaceAll(sqlText, "FROM sales", productJoinFrom)
	out = strings.ReplaceAll(out, "sales.", "s.")
	out = strings.ReplaceAll(out, "product_name", "p.product_name")
	out = strings.ReplaceAll(out, "category", "p.category")
	return out
}

// RepairCustomerJoin is the customers counterpart of RepairProductJoin.
func RepairCustomerJoin(sqlText string) string {
	upper := strings.ToUpper(sqlText)
	if strings.Contains(upper, "JOIN") || strings.Contains(upper, "FROM CUSTOMERS") {
		return sqlText
	}
	if !strings.Contains(upper, "FROM SALES") || !strings.Contains(sqlText, "customer_name") {
		return sqlText
	}

	out := strings.ReplaceAll(sqlText, "FROM sales", customerJoinFrom)
	out = strings.ReplaceAll(out, "sales.", "c.")
	out = strings.ReplaceAll(out, "customer_name", "c.customer_name")
	return out
}

func repairFor(class ErrorClass) (func(string) string, string) {
	switch class {
	case MissingProductJoin:
		return RepairProductJoin, "product"
	case MissingCustomerJoin:
		return RepairCustomerJoin, "customer"
	default:
		return nil, ""
	}
}
