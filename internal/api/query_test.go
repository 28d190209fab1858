package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bizlens/bizlens/internal/assistant"
	"github.com/bizlens/bizlens/internal/config"
	"github.com/bizlens/bizlens/internal/nl2sql"
	"github.com/bizlens/bizlens/internal/query"
)

type fakeAnswerer struct {
	mu      sync.Mutex
	outcome assistant.Outcome
	queries []string
}

func (f *fakeAnswerer) Answer(_ context.Context, naturalQuery string) assistant.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, naturalQuery)
	return f.outcome
}

func successOutcome() assistant.Outcome {
	return assistant.Outcome{
		Success: true,
		Message: "Query executed successfully",
		SQL:     "SELECT region, SUM(revenue) AS total FROM sales GROUP BY region",
		Rows: []query.Row{
			{{Name: "region", Value: "North"}, {Name: "total", Value: 1500.5}},
		},
		Metadata: &assistant.Metadata{
			RowCount:        1,
			ExecutionTimeMs: 12,
			ColumnNames:     []string{"region", "total"},
			QueryType:       assistant.Aggregation,
		},
	}
}

func newQueryHandler(t *testing.T, answerer Answerer) http.Handler {
	t.Helper()
	cfg, err := config.Load("bizlens-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return NewHandler(cfg, Dependencies{Assistant: answerer})
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v (%s)", err, rr.Body.String())
	}
	return body
}

func TestQueryEndpointReturnsOutcome(t *testing.T) {
	answerer := &fakeAnswerer{outcome: successOutcome()}
	h := newQueryHandler(t, answerer)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"query":"revenue by region"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	if !strings.Contains(rr.Body.String(), `"data":[{"region":"North","total":1500.5}]`) {
		t.Fatalf("rows not encoded in column order: %s", rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	if body["generated_sql"] != "SELECT region, SUM(revenue) AS total FROM sales GROUP BY region" {
		t.Fatalf("generated_sql = %v", body["generated_sql"])
	}
	metadata, ok := body["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("metadata = %v", body["metadata"])
	}
	if metadata["query_type"] != "AGGREGATION" || metadata["row_count"] != float64(1) {
		t.Fatalf("metadata = %v", metadata)
	}
	if len(answerer.queries) != 1 || answerer.queries[0] != "revenue by region" {
		t.Fatalf("queries = %v", answerer.queries)
	}
}

func TestQueryEndpointOmitsMetadataWhenDisabled(t *testing.T) {
	h := newQueryHandler(t, &fakeAnswerer{outcome: successOutcome()})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"query":"revenue by region","include_metadata":false,"limit":10,"date_range":"2025"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if _, ok := decodeBody(t, rr)["metadata"]; ok {
		t.Fatal("metadata should be omitted")
	}
}

func TestQueryEndpointValidation(t *testing.T) {
	tests := []struct {
		body    string
		message string
	}{
		{`{"query":"   "}`, "Validation failed: Query cannot be empty"},
		{`{}`, "Validation failed: Query cannot be empty"},
		{`{"query":"hi"}`, "Validation failed: Query must be between 3 and 500 characters"},
		{`{"query":"` + strings.Repeat("a", 501) + `"}`, "Validation failed: Query must be between 3 and 500 characters"},
	}
	for _, tc := range tests {
		answerer := &fakeAnswerer{outcome: successOutcome()}
		h := newQueryHandler(t, answerer)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(tc.body)))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d for %s", rr.Code, tc.body)
		}
		body := decodeBody(t, rr)
		if body["message"] != tc.message || body["success"] != false {
			t.Fatalf("body = %v", body)
		}
		if len(answerer.queries) != 0 {
			t.Fatal("pipeline must not run for invalid input")
		}
	}
}

func TestQueryEndpointRejectsUnknownFields(t *testing.T) {
	h := newQueryHandler(t, &fakeAnswerer{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"sql":"SELECT 1"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if decodeBody(t, rr)["error_code"] != "INVALID_JSON" {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestQueryEndpointFailureOutcomeIs400(t *testing.T) {
	h := newQueryHandler(t, &fakeAnswerer{outcome: assistant.Outcome{
		Success: false,
		Message: "Failed to execute query: Only SELECT queries are allowed",
		SQL:     "DELETE FROM sales",
		Stage:   assistant.StageValidation,
	}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"query":"remove all sales"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["message"] != "Failed to execute query: Only SELECT queries are allowed" {
		t.Fatalf("message = %v", body["message"])
	}
	if body["generated_sql"] != "DELETE FROM sales" {
		t.Fatalf("generated_sql = %v", body["generated_sql"])
	}
}

func TestQueryEndpointNotConfigured(t *testing.T) {
	h := newQueryHandler(t, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"query":"anything"}`)))
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestLegacyQueryReturnsBareRows(t *testing.T) {
	answerer := &fakeAnswerer{outcome: successOutcome()}
	h := newQueryHandler(t, answerer)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/query?q=revenue+by+region", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `[{"region":"North","total":1500.5}]` {
		t.Fatalf("body = %s", got)
	}
	if answerer.queries[0] != "revenue by region" {
		t.Fatalf("query = %q", answerer.queries[0])
	}
}

func TestLegacyQueryFailure(t *testing.T) {
	h := newQueryHandler(t, &fakeAnswerer{outcome: assistant.Outcome{
		Success: false,
		Message: "Failed to generate SQL query: text generation failed (openai): 429",
		Stage:   assistant.StageGeneration,
		Err:     &nl2sql.GenerationError{Provider: "openai", Transient: true, Err: errors.New("429")},
	}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/query?q=revenue", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["error_code"] != "QUERY_FAILED" || body["retryable"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestLegacyQueryRequiresParameter(t *testing.T) {
	h := newQueryHandler(t, &fakeAnswerer{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/query", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}
