package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultExamples(t *testing.T) {
	examples := DefaultExamples()
	if len(examples) != 8 {
		t.Fatalf("len(examples) = %d, want 8", len(examples))
	}
	if examples[0] != "Show me the top 5 products by revenue last quarter" {
		t.Fatalf("examples[0] = %q", examples[0])
	}
}

func TestParseExamples(t *testing.T) {
	examples, err := ParseExamples([]byte("examples:\n  - one\n  - '  '\n  - two\n"))
	if err != nil {
		t.Fatalf("ParseExamples() error = %v", err)
	}
	if len(examples) != 2 || examples[0] != "one" || examples[1] != "two" {
		t.Fatalf("examples = %v", examples)
	}
	if _, err := ParseExamples([]byte("examples: [unterminated")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExamplesEndpoint(t *testing.T) {
	h := newQueryHandler(t, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/examples", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Examples []string `json:"examples"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(body.Examples) != 8 {
		t.Fatalf("examples = %v", body.Examples)
	}
}
