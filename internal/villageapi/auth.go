package villageapi

import (
	"context"
	"net/http"
	"strings"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Login authenticates against the API and returns the user together with
// the upstream session cookie to forward on later calls.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	resp, err := c.call(ctx, http.MethodPost, "/auth/login", req, nil)
	if err != nil {
		return nil, "", err
	}
	user, err := decodeUser(resp.body)
	if err != nil {
		return nil, "", err
	}
	return user, cookieHeader(resp.header), nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me resolves the user owning the forwarded credentials.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.call(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(resp.body)
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	resp, err := c.call(ctx, http.MethodPost, "/auth/register", req, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(resp.body)
}

// decodeUser handles {"data":{"user":{...}}}, {"user":{...}} and a bare user.
func decodeUser(body []byte) (*User, error) {
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := decodeData(body, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}
	var user User
	if err := decodeData(body, &user); err != nil {
		return nil, &APIError{Kind: KindUnknown, Status: http.StatusOK, Message: "unexpected user payload", Cause: err}
	}
	if user.ID == "" {
		return nil, &APIError{Kind: KindUnknown, Status: http.StatusOK, Message: "user payload without id"}
	}
	return &user, nil
}

func cookieHeader(h http.Header) string {
	cookies := (&http.Response{Header: h}).Cookies()
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Value == "" {
			continue
		}
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}
