package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/bizlens/bizlens/internal/assistant"
	"github.com/bizlens/bizlens/internal/nl2sql"
	"github.com/bizlens/bizlens/internal/query"
)

const (
	minQueryLength = 3
	maxQueryLength = 500
)

type queryRequest struct {
	Query           string `json:"query"`
	DateRange       string `json:"date_range"`
	Limit           *int   `json:"limit"`
	IncludeMetadata *bool  `json:"include_metadata"`
}

type queryResponse struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	GeneratedSQL string              `json:"generated_sql,omitempty"`
	Data         []query.Row         `json:"data"`
	Metadata     *assistant.Metadata `json:"metadata,omitempty"`
}

func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Assistant == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query pipeline is not configured", false, nil)
		return
	}

	var request queryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}

	if message := validateQueryText(request.Query); message != "" {
		writeJSON(w, http.StatusBadRequest, queryResponse{
			Success: false,
			Message: "Validation failed: " + message,
		})
		return
	}

	outcome := deps.Assistant.Answer(r.Context(), request.Query)

	response := queryResponse{
		Success:      outcome.Success,
		Message:      outcome.Message,
		GeneratedSQL: outcome.SQL,
	}
	if outcome.Success {
		response.Data = outcome.Rows
		if response.Data == nil {
			response.Data = []query.Row{}
		}
		if request.IncludeMetadata == nil || *request.IncludeMetadata {
			response.Metadata = outcome.Metadata
		}
		writeJSON(w, http.StatusOK, response)
		return
	}
	writeJSON(w, http.StatusBadRequest, response)
}

// handleLegacyQuery answers GET /query?q= with the bare row array.
func handleLegacyQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Assistant == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query pipeline is not configured", false, nil)
		return
	}
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_REQUIRED", "query parameter q is required", false, nil)
		return
	}

	outcome := deps.Assistant.Answer(r.Context(), q)
	if !outcome.Success {
		writeError(r.Context(), w, http.StatusInternalServerError, "QUERY_FAILED", outcome.Message, isRetryable(outcome.Err), map[string]any{
			"stage":         string(outcome.Stage),
			"generated_sql": outcome.SQL,
		})
		return
	}
	rows := outcome.Rows
	if rows == nil {
		rows = []query.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func validateQueryText(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "Query cannot be empty"
	}
	length := utf8.RuneCountInString(trimmed)
	if length < minQueryLength || length > maxQueryLength {
		return "Query must be between 3 and 500 characters"
	}
	return ""
}

func isRetryable(err error) bool {
	var genErr *nl2sql.GenerationError
	return errors.As(err, &genErr) && genErr.Transient
}
