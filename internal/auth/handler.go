package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/session"
	"github.com/frahmantamala/tandengan-portal/internal/transport"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*villageapi.User, string, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, dto RegisterDTO) (*villageapi.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

// LoginPage answers GET /login. After a global logout the expiry notice
// rides along.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("reason") == session.ReasonSessionExpired {
		if c := notify.CollectorFrom(r.Context()); c != nil {
			c.Add(notify.Warning(notify.SessionExpiredMessage))
		}
	}
	h.Respond(w, r, http.StatusOK, map[string]string{"page": "login"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Login failed.")
		return
	}

	user, cookie, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err, "Login failed.")
		return
	}

	if _, err := h.Guard.Start(r.Context(), w, *user, cookie); err != nil {
		h.Logger.Error("Login: failed to start session", "user_id", user.ID, "error", err)
		h.HandleError(w, r, internal.NewInternalError("Login failed.", err), "Login failed.")
		return
	}

	h.Respond(w, r, http.StatusOK, LoginResult{User: *user, Redirect: LandingPath(user)})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Service.Logout(r.Context())
	if err := h.Guard.Logout(w, r); err != nil {
		h.Logger.Error("Logout: failed to clear session", "error", err)
	}
	session.Redirect(w, session.PathLogin)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.Respond(w, r, http.StatusOK, map[string]string{"page": "register"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err, "Registration failed.")
		return
	}
	user, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err, "Registration failed.")
		return
	}
	h.Respond(w, r, http.StatusCreated, user)
}

// Me returns the user resolved by the page guard, or null for visitors.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.Respond(w, r, http.StatusOK, session.UserFromContext(r.Context()))
}

func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusForbidden, transport.Envelope{Error: internal.ErrAdminRequired})
}
