package auth

import (
	"time"

	"github.com/goliatone/go-router"
)

// DefaultCookieName is the session cookie the web layer reads. Fixed by
// contract with the front end.
const DefaultCookieName = "auth-token"

// RouteAuthenticator bridges the Authenticator to HTTP requests: it moves
// session credentials in and out of the auth cookie.
type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := SessionDuration
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = cfg.GetTokenExpiration()
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login authenticates the credentials and, on success, writes the session
// cookie.
func (a *RouteAuthenticator) Login(ctx router.Context, identifier, password string) error {
	token, err := a.auth.Login(ctx.Context(), identifier, password)
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	a.SetSessionCookie(ctx, token)
	return nil
}

// Logout clears the session cookie. The credential itself stays valid
// until its expiry; the server keeps no revocation state.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.cookieDel(ctx, a.CookieName())
}

// SessionFromRequest reads and validates the session cookie.
func (a *RouteAuthenticator) SessionFromRequest(ctx router.Context) (Session, error) {
	raw := ctx.Cookies(a.CookieName())
	if raw == "" {
		return nil, ErrUnableToFindSession
	}
	return a.auth.SessionFromToken(raw)
}

// CookieName resolves the configured cookie name, falling back to the
// contract default.
func (a *RouteAuthenticator) CookieName() string {
	if name := a.cfg.GetCookieName(); name != "" {
		return name
	}
	return DefaultCookieName
}

// SetSessionCookie writes the credential with the contract attributes:
// HTTP only, SameSite Lax, Secure over TLS, session-length max age.
func (a *RouteAuthenticator) SetSessionCookie(c router.Context, val string) {
	c.Cookie(&router.Cookie{
		Name:     a.CookieName(),
		Value:    val,
		Expires:  time.Now().Add(a.cookieDuration),
		HTTPOnly: true,
		Secure:   a.cfg.GetSecureCookies(),
		SameSite: "Lax",
	})
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   a.cfg.GetSecureCookies(),
		SameSite: "Lax",
	})
}
