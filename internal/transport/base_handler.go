// Package transport holds the pieces shared by every HTTP handler:
// response encoding, the error envelope and bearer-token extraction.
package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/helixkit/userstore/internal"
	"github.com/helixkit/userstore/pkg/logger"
)

type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("encode response", "error", err)
	}
}

// WriteError sends the uniform error envelope. The message is what the
// client sees, so callers keep backend details out of it.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, map[string]any{
		"code":    status,
		"message": message,
	})
}

// WriteAppError sends a typed error with its own status code and the
// cause stripped from the payload.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	h.Logger.Error("http error",
		"status", appErr.StatusCode,
		"code", appErr.Code,
		"message", appErr.Message,
		"cause", appErr.Cause,
	)
	status, payload := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, payload)
}

// ExtractTokenFromHeader returns the bearer token from the
// Authorization header, or "" when absent or malformed.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return ""
	}
	return token
}
