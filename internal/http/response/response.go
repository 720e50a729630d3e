package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorBody struct {
	Detail    string `json:"detail"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// JSON writes v as the response body. Resources are returned bare, without an envelope.
// The body is encoded before the status is written, so a value that cannot be
// encoded becomes a 500 instead of an empty success.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "response encode failed", "error", err, "status", status, "request_id", RequestID(r))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorBody{
			Detail:    "failed to encode response",
			Code:      "INTERNAL",
			RequestID: RequestID(r),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.WarnContext(r.Context(), "response write failed", "error", err, "request_id", RequestID(r))
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, detail string, details any) {
	JSON(w, r, status, ErrorBody{
		Detail:    detail,
		Code:      code,
		RequestID: RequestID(r),
		Details:   details,
	})
}

func RequestID(r *http.Request) string {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(chimiddleware.RequestIDHeader)
}
