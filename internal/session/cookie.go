package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCookie        = errors.New("session cookie absent")
	ErrMalformedCookie = errors.New("session cookie malformed")
	ErrExpiredCookie   = errors.New("session cookie expired")
)

// Claims is the signed payload of the browser cookie.
type Claims struct {
	SessionID string          `json:"sid"`
	Role      villageapi.Role `json:"role"`
	jwt.RegisteredClaims
}

type CookieConfig struct {
	Name   string
	Secret string
	Secure bool
	TTL    time.Duration
}

type CookieCodec struct {
	name   string
	secret []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func NewCookieCodec(cfg CookieConfig) *CookieCodec {
	name := cfg.Name
	if name == "" {
		name = "tandengan_session"
	}
	return &CookieCodec{
		name:   name,
		secret: []byte(cfg.Secret),
		secure: cfg.Secure,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

func (c *CookieCodec) SetClock(now func() time.Time) {
	c.now = now
}

func (c *CookieCodec) Name() string {
	return c.name
}

func (c *CookieCodec) Encode(s *Session) (string, error) {
	claims := Claims{
		SessionID: s.ID,
		Role:      s.User.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(s.User.ID),
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return token, nil
}

func (c *CookieCodec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCookie
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedCookie, err)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrMalformedCookie)
	}
	return claims, nil
}

// Read decodes the request's session cookie.
func (c *CookieCodec) Read(r *http.Request) (*Claims, error) {
	ck, err := r.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return nil, ErrNoCookie
	}
	return c.Decode(ck.Value)
}

func (c *CookieCodec) Write(w http.ResponseWriter, s *Session) error {
	token, err := c.Encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

const (
	visitorAudience = "visitor"
	visitorTTL      = 30 * 24 * time.Hour
)

// VisitorName is the cookie that tells anonymous browsers apart.
func (c *CookieCodec) VisitorName() string {
	return c.name + "_visitor"
}

// ReadVisitor returns the visitor id of an anonymous browser.
func (c *CookieCodec) ReadVisitor(r *http.Request) (string, error) {
	ck, err := r.Cookie(c.VisitorName())
	if err != nil || ck.Value == "" {
		return "", ErrNoCookie
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(ck.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(visitorAudience),
		jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredCookie
		}
		return "", fmt.Errorf("%w: %v", ErrMalformedCookie, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing visitor id", ErrMalformedCookie)
	}
	return claims.Subject, nil
}

// WriteVisitor signs id into the visitor cookie.
func (c *CookieCodec) WriteVisitor(w http.ResponseWriter, id string) error {
	expires := c.now().Add(visitorTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		Audience:  jwt.ClaimStrings{visitorAudience},
		IssuedAt:  jwt.NewNumericDate(c.now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("sign visitor cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.VisitorName(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
