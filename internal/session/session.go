package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_hub/internal/tokens"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

type Config struct {
	Secure     bool
	Path       string
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Transport moves tokens between the token service and HttpOnly cookies.
type Transport struct {
	cfg Config
}

func New(cfg Config) *Transport {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return &Transport{cfg: cfg}
}

func (t *Transport) Attach(c echo.Context, access, refresh tokens.Token) {
	c.SetCookie(t.cookie(AccessCookie, access.Value, t.cfg.AccessTTL))
	c.SetCookie(t.cookie(RefreshCookie, refresh.Value, t.cfg.RefreshTTL))
}

func (t *Transport) AttachAccessOnly(c echo.Context, access tokens.Token) {
	c.SetCookie(t.cookie(AccessCookie, access.Value, t.cfg.AccessTTL))
}

func (t *Transport) Extract(c echo.Context) (string, bool) {
	return read(c, AccessCookie)
}

func (t *Transport) ExtractRefresh(c echo.Context) (string, bool) {
	return read(c, RefreshCookie)
}

func (t *Transport) Clear(c echo.Context) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := t.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func (t *Transport) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     t.cfg.Path,
		Domain:   t.cfg.Domain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   t.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func read(c echo.Context, name string) (string, bool) {
	ck, err := c.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
