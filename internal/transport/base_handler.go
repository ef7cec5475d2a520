package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/core/common/validation"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/frahmantamala/tandengan-portal/pkg/logger"
)

const defaultMaxUpload = 10 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger         *slog.Logger
	Guard          *session.Guard
	MaxUploadBytes int64
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, guard *session.Guard, maxUpload int64) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &BaseHandler{Logger: lg, Guard: guard, MaxUploadBytes: maxUpload}
}

// Envelope is the body of every portal JSON response.
type Envelope struct {
	Data    interface{}        `json:"data,omitempty"`
	Error   *internal.AppError `json:"error,omitempty"`
	Notices []notify.Notice    `json:"notices,omitempty"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// Respond wraps data in the envelope together with the request's notices.
func (h *BaseHandler) Respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	h.WriteJSON(w, status, Envelope{Data: data, Notices: drain(r)})
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, Envelope{Error: &internal.AppError{
		Type:       internal.ErrorTypeInternal,
		Code:       internal.ErrorCode(http.StatusText(status)),
		Message:    message,
		StatusCode: status,
	}})
}

// HandleError is the outermost boundary of every action: the error becomes
// notices plus a status, and never escapes further. An upstream 401 seen
// during the request ends in a redirect to the login page instead.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if h.Guard != nil && h.Guard.LoggedOut(w, r) {
		return
	}

	appErr := toAppError(err, fallback)
	if c := notify.CollectorFrom(r.Context()); c != nil && !notify.WasReported(err) {
		c.Add(notify.FromError(err, fallback)...)
	}

	log := logger.From(r.Context())
	if appErr.StatusCode >= 500 {
		log.Error("request failed", "path", r.URL.Path, "status", appErr.StatusCode, "error", err)
	} else {
		log.Warn("request rejected", "path", r.URL.Path, "status", appErr.StatusCode, "error", err)
	}
	h.WriteJSON(w, appErr.StatusCode, Envelope{Error: appErr, Notices: drain(r)})
}

func toAppError(err error, fallback string) *internal.AppError {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	if apiErr, ok := villageapi.AsAPIError(err); ok {
		switch apiErr.Kind {
		case villageapi.KindUnauthorized:
			return internal.ErrSessionExpired
		case villageapi.KindValidation:
			details := make([]internal.ValidationError, 0, len(apiErr.Details))
			for _, d := range apiErr.Details {
				details = append(details, internal.ValidationError{Field: d.Field, Message: d.Message, Code: string(internal.ErrCodeValidationFailed)})
			}
			appErr := internal.NewValidationError(apiErr.Message, internal.ErrCodeValidationFailed)
			if len(details) > 0 {
				appErr = appErr.WithDetails(internal.ValidationErrors{Errors: details})
			}
			return appErr
		case villageapi.KindFileType:
			appErr := internal.NewValidationError(apiErr.Message, internal.ErrCodeInvalidFileType)
			appErr.StatusCode = http.StatusUnsupportedMediaType
			return appErr
		case villageapi.KindRateLimit:
			return internal.NewRateLimitedError(apiErr.Message, internal.ErrCodeUpstreamRateLimited)
		case villageapi.KindNotFound:
			return internal.NewNotFoundError(apiErr.Message, internal.ErrCodeResourceNotFound)
		}
		return internal.NewExternalError(fallback, http.StatusBadGateway, err)
	}
	return internal.NewInternalError(fallback, err)
}

func drain(r *http.Request) []notify.Notice {
	if c := notify.CollectorFrom(r.Context()); c != nil {
		return c.Drain()
	}
	return nil
}

// DecodeJSON reads the body into dst and checks its validate tags.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	body := io.LimitReader(r.Body, h.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	if appErr := validation.Struct(dst); appErr != nil {
		return appErr
	}
	return nil
}

// Confirmed reports whether the caller confirmed a destructive action.
func Confirmed(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("confirm")); err == nil && v {
		return true
	}
	v, err := strconv.ParseBool(r.Header.Get("X-Confirm"))
	return err == nil && v
}

// ListQuery carries the list-state changes requested in the query string.
// Absent parameters leave the controller's state untouched.
type ListQuery struct {
	Search   *string
	Category *string
	Sort     string
	Dir      string
	Toggle   string
	Page     int
}

func ParseListQuery(r *http.Request) ListQuery {
	q := r.URL.Query()
	var lq ListQuery
	if q.Has("search") {
		s := q.Get("search")
		lq.Search = &s
	}
	if q.Has("category") {
		c := q.Get("category")
		lq.Category = &c
	}
	lq.Sort = q.Get("sort")
	lq.Dir = strings.ToLower(q.Get("dir"))
	lq.Toggle = q.Get("toggle")
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		lq.Page = p
	}
	return lq
}

// ApplyListQuery changes the controller in filter, sort, page order.
func ApplyListQuery[T any](c *listing.Controller[T], q ListQuery) error {
	if q.Search != nil {
		c.SetSearch(*q.Search)
	}
	if q.Category != nil {
		c.SetCategory(*q.Category)
	}
	if q.Toggle != "" {
		if err := c.ToggleSort(q.Toggle); err != nil {
			return internal.NewValidationFieldError("toggle", err.Error(), internal.ErrCodeValidationFailed)
		}
	} else if q.Sort != "" {
		if err := c.SetSort(q.Sort, listing.Direction(q.Dir)); err != nil {
			return internal.NewValidationFieldError("sort", err.Error(), internal.ErrCodeValidationFailed)
		}
	}
	if q.Page > 0 {
		c.SetPage(q.Page)
	}
	return nil
}

// ServeList loads the controller once, applies the query and writes the
// current page. A failed load still answers with the (possibly empty) list
// and the failure notice.
func ServeList[T any](h *BaseHandler, w http.ResponseWriter, r *http.Request, c *listing.Controller[T]) {
	if err := c.EnsureLoaded(r.Context()); err != nil && h.Guard != nil && h.Guard.LoggedOut(w, r) {
		return
	}
	if err := ApplyListQuery(c, ParseListQuery(r)); err != nil {
		h.HandleError(w, r, err, "invalid list parameters")
		return
	}
	h.Respond(w, r, http.StatusOK, c.View())
}

// Refresh reloads the controller on request; it is the manual retry after
// a failed load.
func Refresh[T any](h *BaseHandler, w http.ResponseWriter, r *http.Request, c *listing.Controller[T]) {
	if err := c.Load(r.Context()); err != nil && h.Guard != nil && h.Guard.LoggedOut(w, r) {
		return
	}
	h.Respond(w, r, http.StatusOK, c.View())
}

// ReadMultipart turns an incoming form into an upstream multipart body.
// The returned func closes the opened files.
func (h *BaseHandler) ReadMultipart(r *http.Request, fileFields ...string) (*villageapi.Multipart, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		return nil, noop, internal.NewValidationError("invalid multipart form", internal.ErrCodeValidationFailed).WithCause(err)
	}
	form := &villageapi.Multipart{Fields: map[string]string{}}
	for k, vals := range r.MultipartForm.Value {
		if len(vals) > 0 {
			form.Fields[k] = vals[0]
		}
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, field := range fileFields {
		for _, fh := range r.MultipartForm.File[field] {
			f, err := fh.Open()
			if err != nil {
				closeAll()
				return nil, noop, internal.NewValidationFieldError(field, fmt.Sprintf("unable to read %s", fh.Filename), internal.ErrCodeInvalidFileType)
			}
			opened = append(opened, f)
			form.Files = append(form.Files, villageapi.File{
				FieldName:   field,
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Content:     f,
			})
		}
	}
	return form, closeAll, nil
}
