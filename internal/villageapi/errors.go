package villageapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindValidation   ErrorKind = "validation"
	KindFileType     ErrorKind = "fileType"
	KindRateLimit    ErrorKind = "rateLimit"
	KindNotFound     ErrorKind = "notFound"
	KindUnknown      ErrorKind = "unknown"
)

type FieldDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// APIError is the classified result of a failed upstream call. Kind is
// decided once here so callers never inspect message text.
type APIError struct {
	Kind    ErrorKind     `json:"kind"`
	Status  int           `json:"status"`
	Message string        `json:"message"`
	Details []FieldDetail `json:"details,omitempty"`
	Cause   error         `json:"-"`
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("village api %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("village api %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns KindUnknown for errors that did not come from the client.
func KindOf(err error) ErrorKind {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Kind
	}
	return KindUnknown
}

func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }

var (
	fileTypeHints  = []string{"file type", "tipe file", "jenis file", "format file", "file size", "ukuran file", "too large", "terlalu besar"}
	rateLimitHints = []string{"too many", "rate limit", "terlalu banyak", "coba lagi nanti"}
)

type errorBody struct {
	Message string            `json:"message"`
	Error   json.RawMessage   `json:"error"`
	Details []json.RawMessage `json:"details"`
	Errors  []json.RawMessage `json:"errors"`
}

// classify turns a non-2xx upstream response into an APIError.
func classify(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Kind: KindUnknown}

	var parsed errorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		apiErr.Message = parsed.Message
		if apiErr.Message == "" && len(parsed.Error) > 0 {
			var s string
			if json.Unmarshal(parsed.Error, &s) == nil {
				apiErr.Message = s
			}
		}
		raw := parsed.Details
		if len(raw) == 0 {
			raw = parsed.Errors
		}
		apiErr.Details = parseDetails(raw)
	} else if len(body) > 0 {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	lower := strings.ToLower(apiErr.Message)
	switch {
	case status == http.StatusUnauthorized:
		apiErr.Kind = KindUnauthorized
	case status == http.StatusNotFound:
		apiErr.Kind = KindNotFound
	case status == http.StatusTooManyRequests || containsAny(lower, rateLimitHints):
		apiErr.Kind = KindRateLimit
	case status == http.StatusUnsupportedMediaType || status == http.StatusRequestEntityTooLarge || containsAny(lower, fileTypeHints):
		apiErr.Kind = KindFileType
	case len(apiErr.Details) > 0, status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		apiErr.Kind = KindValidation
	}
	return apiErr
}

func parseDetails(raw []json.RawMessage) []FieldDetail {
	if len(raw) == 0 {
		return nil
	}
	out := make([]FieldDetail, 0, len(raw))
	for _, r := range raw {
		var s string
		if json.Unmarshal(r, &s) == nil {
			if s != "" {
				out = append(out, FieldDetail{Message: s})
			}
			continue
		}
		var obj struct {
			Field   string          `json:"field"`
			Path    json.RawMessage `json:"path"`
			Message string          `json:"message"`
			Msg     string          `json:"msg"`
		}
		if json.Unmarshal(r, &obj) != nil {
			continue
		}
		d := FieldDetail{Field: obj.Field, Message: obj.Message}
		if d.Message == "" {
			d.Message = obj.Msg
		}
		if d.Field == "" && len(obj.Path) > 0 {
			d.Field = pathString(obj.Path)
		}
		if d.Message != "" {
			out = append(out, d)
		}
	}
	return out
}

func pathString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var parts []interface{}
	if json.Unmarshal(raw, &parts) == nil {
		segs := make([]string, 0, len(parts))
		for _, p := range parts {
			segs = append(segs, fmt.Sprint(p))
		}
		return strings.Join(segs, ".")
	}
	return ""
}

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

func transportError(err error) *APIError {
	return &APIError{Kind: KindUnknown, Message: "village api unreachable", Cause: err}
}
