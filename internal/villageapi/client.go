package villageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"
)

const maxErrorBody = 64 << 10

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the remote village REST API. Every failed call comes back
// as an *APIError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu             sync.RWMutex
	onUnauthorized []func(ctx context.Context)
}

func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// OnUnauthorized registers a hook run whenever the API answers 401.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

func (c *Client) fireUnauthorized(ctx context.Context) {
	c.mu.RLock()
	hooks := append([]func(context.Context){}, c.onUnauthorized...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

type credentialsKey struct{}

// WithCredentials attaches the upstream session cookie forwarded on every call.
func WithCredentials(ctx context.Context, cookie string) context.Context {
	return context.WithValue(ctx, credentialsKey{}, cookie)
}

func CredentialsFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(credentialsKey{}).(string); ok {
		return v
	}
	return ""
}

type File struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
}

// Multipart is a form body for file-bearing mutations.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

func (m *Multipart) Set(key, value string) {
	if m.Fields == nil {
		m.Fields = make(map[string]string)
	}
	m.Fields[key] = value
}

// FileNames lists the names of the files attached under field.
func (m *Multipart) FileNames(field string) []string {
	var out []string
	for _, f := range m.Files {
		if f.FieldName == field {
			out = append(out, f.FileName)
		}
	}
	return out
}

func (m *Multipart) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.FieldName), escapeQuotes(f.FileName)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.FieldName, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", f.FileName, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

type response struct {
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie := CredentialsFromContext(ctx); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("village api request failed", "method", method, "path", path, "error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("village api response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := classify(resp.StatusCode, raw)
		if apiErr.Kind == KindUnauthorized {
			c.fireUnauthorized(ctx)
		}
		c.logger.Warn("village api error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"kind", apiErr.Kind,
			"message", apiErr.Message)
		return nil, apiErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(fmt.Errorf("read body: %w", err))
	}
	return &response{header: resp.Header, body: raw}, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) (*response, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := decodeData(resp.body, out); err != nil {
			return nil, &APIError{Kind: KindUnknown, Status: http.StatusOK, Message: "unexpected response from village api", Cause: err}
		}
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	_, err := c.call(ctx, http.MethodGet, path, nil, out)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	_, err := c.call(ctx, method, path, in, out)
	return err
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, form *Multipart, out interface{}) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("failed to encode multipart %s %s: %w", method, path, err)
	}
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out != nil {
		if err := decodeData(resp.body, out); err != nil {
			return &APIError{Kind: KindUnknown, Status: http.StatusOK, Message: "unexpected response from village api", Cause: err}
		}
	}
	return nil
}

// decodeData accepts both {"data": ...} envelopes and bare bodies.
func decodeData(body []byte, out interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if body[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err == nil {
			if data, ok := envelope["data"]; ok && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
				return json.Unmarshal(data, out)
			}
		}
	}
	return json.Unmarshal(body, out)
}

func resourcePath(base string, id ID, rest ...string) string {
	p := base + "/" + url.PathEscape(string(id))
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
