package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/tandengan-portal/pkg/logger"
	"github.com/go-chi/chi/middleware"
)

const filtered = "[FILTERED]"

// maskedNames are matched as substrings of lower-cased header and JSON keys.
var maskedNames = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"session",
	"cookie",
	"credential",
	"nationalid",
	"nik",
	"phone",
	"whatsapp",
}

func masked(name string) bool {
	name = strings.ToLower(name)
	for _, m := range maskedNames {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// LoggingMiddleware writes one line when a request arrives and one when it
// completes. JSON request bodies are logged at debug level with personal
// fields masked; response bodies are only counted.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := base
			if ctxLogger, ok := logger.Lookup(r.Context()); ok {
				lg = ctxLogger
			}
			lg = lg.With("request_id", middleware.GetReqID(r.Context()))

			logRequest(lg, r)

			rec := &statusRecorder{ResponseWriter: w}
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
			lg.Log(r.Context(), level, "response",
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", status,
				"location", rec.Header().Get("Location"),
				"content_type", rec.Header().Get("Content-Type"),
				"response_size", rec.size,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

func logRequest(lg *slog.Logger, r *http.Request) {
	lg.Info("incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	if !lg.Enabled(r.Context(), slog.LevelDebug) || r.Body == nil {
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return
	}
	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return
	}
	lg.Debug("request body",
		"headers", maskHeaders(r.Header),
		"body", maskBody(body),
	)
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if masked(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func maskBody(body []byte) string {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[invalid JSON omitted]"
	}
	out, err := json.Marshal(maskJSON(data))
	if err != nil {
		return "[unencodable body omitted]"
	}
	return string(out)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if masked(key) {
				out[key] = filtered
				continue
			}
			out[key] = maskJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskJSON(item)
		}
		return out
	default:
		return v
	}
}
