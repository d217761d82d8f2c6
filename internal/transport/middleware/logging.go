package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// redactedFields matches, by substring, the payload and header names
// that must never reach the logs. Login bodies and token responses
// flow through every request cycle here.
var redactedFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"credential",
	"key",
	"auth",
}

const redactedPlaceholder = "[REDACTED]"

// LoggingMiddleware emits one request and one response record per call,
// with credentials and tokens scrubbed from headers and JSON bodies.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())

			logger.Info("request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"headers", scrubHeaders(r.Header),
				"body", scrubBody(snapshotBody(r)),
			)

			rec := &statusRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "response",
				"request_id", reqID,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", rec.body.Len(),
				"body", scrubBody(rec.body.Bytes()),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	body   *bytes.Buffer
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// snapshotBody reads the request body and puts it back so the handler
// still sees it.
func snapshotBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	raw, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw
}

func isRedactedName(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range redactedFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func scrubHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isRedactedName(name) {
			out[name] = redactedPlaceholder
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// scrubBody redacts matching keys inside JSON payloads. Non-JSON bodies
// are dropped wholesale when they so much as mention a sensitive name.
func scrubBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		if isRedactedName(string(raw)) {
			return redactedPlaceholder
		}
		return string(raw)
	}

	scrubbed, err := json.Marshal(scrubValue(payload))
	if err != nil {
		return redactedPlaceholder
	}
	return string(scrubbed)
}

func scrubValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			if isRedactedName(key) {
				out[key] = redactedPlaceholder
				continue
			}
			out[key] = scrubValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = scrubValue(inner)
		}
		return out
	default:
		return v
	}
}
