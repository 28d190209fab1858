package nl2sql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIGeneratorReturnsContent(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```sql\\nSELECT 1;\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	gen, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "secret", Model: "llama3"})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator() error = %v", err)
	}
	got, err := gen.Generate(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "```sql\nSELECT 1;\n```" {
		t.Fatalf("Generate() = %q", got)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotBody["model"] != "llama3" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %#v", gotBody["messages"])
	}
}

func TestOpenAIGeneratorOmitsAuthWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"SELECT 1"}}]}`))
	}))
	defer srv.Close()

	gen, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator() error = %v", err)
	}
	if _, err := gen.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestOpenAIGeneratorClassifiesFailures(t *testing.T) {
	cases := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, true},
		{"server error", http.StatusBadGateway, `{}`, true},
		{"unauthorized", http.StatusUnauthorized, `{}`, false},
		{"no choices", http.StatusOK, `{"choices":[]}`, false},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, false},
		{"bad json", http.StatusOK, `not json`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			gen, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("NewOpenAIGenerator() error = %v", err)
			}
			_, err = gen.Generate(context.Background(), "p")
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("error = %v, want GenerationError", err)
			}
			if genErr.Transient != tc.wantTransient {
				t.Fatalf("Transient = %v, want %v", genErr.Transient, tc.wantTransient)
			}
		})
	}
}

func TestNewOpenAIGeneratorRequiresBaseURL(t *testing.T) {
	if _, err := NewOpenAIGenerator(OpenAIConfig{}); err == nil {
		t.Fatal("expected error")
	}
}
