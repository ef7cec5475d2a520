package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/frahmantamala/tandengan-portal/pkg/logger"
	"github.com/google/uuid"
)

const (
	PathHome         = "/"
	PathLogin        = "/login"
	PathRegister     = "/register"
	PathUnauthorized = "/unauthorized"
	PathAdmin        = "/admin"
	PathGuestSignup  = "/tamu-wajib-lapor/daftar"

	ReasonLogout               = "logout"
	ReasonUpstreamUnauthorized = "upstream_unauthorized"
	ReasonSessionExpired       = "session_expired"
)

// State is what the edge knows about the caller before any handler runs.
type State int

const (
	StateAnonymous State = iota
	StateUser
	StateAdmin
	StateMalformed
)

func (s State) String() string {
	switch s {
	case StateUser:
		return "user"
	case StateAdmin:
		return "admin"
	case StateMalformed:
		return "malformed"
	}
	return "anonymous"
}

type Decision struct {
	Redirect    string
	ClearCookie bool
}

func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalise(path string) string {
	if path == "" {
		return PathHome
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// Decide applies the route-level access matrix.
func Decide(path string, state State) Decision {
	path = normalise(path)

	if state == StateMalformed {
		return Decision{Redirect: PathHome, ClearCookie: true}
	}

	switch {
	case under(path, PathAdmin):
		if state != StateAdmin {
			return Decision{Redirect: PathUnauthorized}
		}
	case under(path, PathGuestSignup):
		if state == StateAnonymous {
			return Decision{Redirect: PathLogin}
		}
	case path == PathLogin || path == PathRegister:
		if state != StateAnonymous {
			return Decision{Redirect: PathHome}
		}
	}
	return Decision{}
}

// CurrentUserFetcher resolves the caller through the upstream /auth/me.
type CurrentUserFetcher interface {
	Me(ctx context.Context) (*villageapi.User, error)
}

type Guard struct {
	store  *Store
	codec  *CookieCodec
	me     CurrentUserFetcher
	logger *slog.Logger
}

func NewGuard(store *Store, codec *CookieCodec, me CurrentUserFetcher, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, codec: codec, me: me, logger: logger}
}

func (g *Guard) Codec() *CookieCodec {
	return g.codec
}

type tracker struct {
	mu        sync.Mutex
	session   *Session
	loggedOut bool
}

type trackerKey struct{}

func trackerFrom(ctx context.Context) *tracker {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(trackerKey{}).(*tracker)
	return t
}

// Resolve loads the caller's session from the cookie, applies Decide and
// populates the request context.
func (g *Guard) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		state := StateAnonymous
		var sess *Session

		claims, err := g.codec.Read(r)
		switch {
		case err == nil:
			sess, err = g.store.Get(ctx, claims.SessionID)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					g.logger.Error("failed to load session", "error", err)
				}
				g.codec.Clear(w)
				sess = nil
			} else if sess.IsAdmin() {
				state = StateAdmin
			} else {
				state = StateUser
			}
		case errors.Is(err, ErrMalformedCookie):
			state = StateMalformed
			g.logger.Warn("malformed session cookie", "path", r.URL.Path, "error", err)
		case errors.Is(err, ErrExpiredCookie):
			g.codec.Clear(w)
		}

		decision := Decide(r.URL.Path, state)
		if decision.ClearCookie {
			g.codec.Clear(w)
		}
		if decision.Redirect != "" {
			g.logger.Debug("route guard redirect",
				"path", r.URL.Path,
				"state", state.String(),
				"target", decision.Redirect)
			Redirect(w, decision.Redirect)
			return
		}

		var clientKey string
		if sess != nil {
			ctx = WithSession(ctx, sess)
			ctx = internal.ContextWithSessionID(ctx, sess.ID)
			ctx = internal.ContextWithUserID(ctx, string(sess.User.ID))
			ctx = villageapi.WithCredentials(ctx, sess.UpstreamCookie)
			ctx = logger.With(ctx, "sessionID", sess.ID)
			clientKey = internal.SessionClientKey(sess.ID)
		} else {
			clientKey = internal.VisitorClientKey(g.visitor(w, r))
		}
		ctx = internal.ContextWithClientKey(ctx, clientKey)
		ctx = context.WithValue(ctx, trackerKey{}, &tracker{session: sess})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser resolves the current user through the API. With admin set, a
// failed lookup redirects to login and a non-admin user to unauthorized;
// without it a failed lookup continues anonymously.
func (g *Guard) RequireUser(admin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var user *villageapi.User
			var err error
			if FromContext(ctx) == nil {
				err = ErrNotFound
			} else {
				user, err = g.me.Me(ctx)
			}

			if err != nil {
				if g.LoggedOut(w, r) {
					return
				}
				if admin {
					Redirect(w, PathLogin)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithUser(ctx, nil)))
				return
			}

			if admin && user.Role != villageapi.RoleAdmin {
				g.logger.Warn("admin page denied", "user_id", user.ID, "role", user.Role, "path", r.URL.Path)
				Redirect(w, PathUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

// GlobalLogout is installed as the API client's unauthorized hook: the
// session of the request in ctx is cleared once.
func (g *Guard) GlobalLogout(ctx context.Context) {
	t := trackerFrom(ctx)
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.session == nil || t.loggedOut {
		t.mu.Unlock()
		return
	}
	t.loggedOut = true
	sid := t.session.ID
	t.mu.Unlock()

	g.logger.Warn("upstream rejected credentials, logging out", "session_id", sid)
	if err := g.store.Clear(context.WithoutCancel(ctx), sid, ReasonUpstreamUnauthorized); err != nil {
		g.logger.Error("global logout failed", "session_id", sid, "error", err)
	}
}

// LoggedOut finishes a global logout that happened during this request:
// the cookie is cleared and the caller is sent to the login page.
func (g *Guard) LoggedOut(w http.ResponseWriter, r *http.Request) bool {
	t := trackerFrom(r.Context())
	if t == nil {
		return false
	}
	t.mu.Lock()
	out := t.loggedOut
	t.mu.Unlock()
	if !out {
		return false
	}
	g.codec.Clear(w)
	RedirectWithNotices(w, PathLogin+"?reason="+ReasonSessionExpired, notify.Warning(notify.SessionExpiredMessage))
	return true
}

// Logout ends the caller's session on request.
func (g *Guard) Logout(w http.ResponseWriter, r *http.Request) error {
	g.codec.Clear(w)
	sess := FromContext(r.Context())
	if sess == nil {
		return nil
	}
	if t := trackerFrom(r.Context()); t != nil {
		t.mu.Lock()
		t.loggedOut = true
		t.mu.Unlock()
	}
	return g.store.Clear(r.Context(), sess.ID, ReasonLogout)
}

// Start opens a session for user and writes the cookie.
func (g *Guard) Start(ctx context.Context, w http.ResponseWriter, user villageapi.User, upstreamCookie string) (*Session, error) {
	sess, err := g.store.Set(ctx, user, upstreamCookie)
	if err != nil {
		return nil, err
	}
	if err := g.codec.Write(w, sess); err != nil {
		_ = g.store.Clear(ctx, sess.ID, ReasonLogout)
		return nil, err
	}
	return sess, nil
}

type redirectBody struct {
	Redirect string          `json:"redirect"`
	Notices  []notify.Notice `json:"notices,omitempty"`
}

// Redirect answers with 303 and the target in both Location and the body,
// so page loads and fetch callers land in the same place.
func Redirect(w http.ResponseWriter, target string) {
	RedirectWithNotices(w, target)
}

func RedirectWithNotices(w http.ResponseWriter, target string, notices ...notify.Notice) {
	w.Header().Set("Location", target)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusSeeOther)
	_ = json.NewEncoder(w).Encode(redirectBody{Redirect: target, Notices: notices})
}

// visitor returns the anonymous browser's id, issuing a new one when the
// request carries no valid visitor cookie.
func (g *Guard) visitor(w http.ResponseWriter, r *http.Request) string {
	id, err := g.codec.ReadVisitor(r)
	if err == nil {
		return id
	}
	if errors.Is(err, ErrMalformedCookie) {
		g.logger.Warn("malformed visitor cookie", "path", r.URL.Path, "error", err)
	}
	id = uuid.NewString()
	if err := g.codec.WriteVisitor(w, id); err != nil {
		g.logger.Error("failed to issue visitor cookie", "error", err)
	}
	return id
}
