package assistant

import "fmt"

// ErrorClass is the failure category derived from the warehouse error text.
type ErrorClass string

const (
	MissingProductJoin  ErrorClass = "MISSING_PRODUCT_JOIN"
	MissingCustomerJoin ErrorClass = "MISSING_CUSTOMER_JOIN"
	UnknownRelation     ErrorClass = "UNKNOWN_RELATION"
	SyntaxError         ErrorClass = "SYNTAX_ERROR"
	GroupingError       ErrorClass = "GROUPING_ERROR"
	Generic             ErrorClass = "GENERIC"
)

// ExecutionError is a warehouse failure after classification. SQL is the
// statement as it was handed to the coordinator, before any repair.
type ExecutionError struct {
	Class   ErrorClass
	Message string
	SQL     string
	Retried bool
	Cause   error
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func newExecutionError(class ErrorClass, sqlText string, cause error, retried bool) *ExecutionError {
	return &ExecutionError{
		Class:   class,
		Message: executionMessage(class, sqlText, cause),
		SQL:     sqlText,
		Retried: retried,
		Cause:   cause,
	}
}

func executionMessage(class ErrorClass, sqlText string, cause error) string {
	switch class {
	case MissingProductJoin:
		return "Column not found in sales table. Product information (product_name, category) requires JOIN with products table. Query attempted: " + sqlText
	case MissingCustomerJoin:
		return "Column 'customer_name' not found in sales table. Customer information requires JOIN with customers table. Query attempted: " + sqlText
	case UnknownRelation:
		return "Referenced table or column does not exist in the database"
	case SyntaxError:
		return "Generated SQL query has syntax errors: " + sqlText
	case GroupingError:
		return "Query grouping error - all selected columns must be in GROUP BY clause"
	default:
		if cause == nil {
			return "SQL execution failed"
		}
		return fmt.Sprintf("SQL execution failed: %v", cause)
	}
}
