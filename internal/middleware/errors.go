package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"bovespacli/internal/infrastructure"
)

// Problem represents an RFC 7807 problem details object
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	return json.NewEncoder(w).Encode(p)
}

// ProblemFromStatus creates a Problem from an HTTP status code
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	title := http.StatusText(status)
	if title == "" {
		title = "Unknown Error"
	}
	problemType := "/errors/" + strings.ReplaceAll(strings.ToLower(title), " ", "-")
	if status == http.StatusTooManyRequests {
		problemType = "/errors/rate-limit-exceeded"
	}
	return Problem{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}

// WriteProblem answers the request with an RFC 7807 body carrying its trace id
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	traceID := infrastructure.GetTraceID(r.Context())
	if traceID == "" {
		traceID = GetReqID(r.Context())
	}
	_ = ProblemFromStatus(status, detail, traceID).Render(w, r)
}

// NotFound is the router fallback for unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, r, http.StatusNotFound, "no route for "+r.URL.Path)
}

// MethodNotAllowed is the router fallback for known routes with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, r, http.StatusMethodNotAllowed, r.Method+" is not supported on "+r.URL.Path)
}
