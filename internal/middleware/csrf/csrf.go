package csrf

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type Config struct {
	// TrustedOrigins are accepted in addition to the request's own origin,
	// e.g. "https://shop.example.com".
	TrustedOrigins []string
}

// OriginCheck rejects state-changing browser requests whose Origin (or
// Referer) points at a foreign site. Requests carrying neither header are
// not browser-initiated cross-site requests and pass through.
func OriginCheck(cfg Config) echo.MiddlewareFunc {
	trusted := make(map[string]struct{}, len(cfg.TrustedOrigins))
	for _, o := range cfg.TrustedOrigins {
		trusted[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			origin := requestOrigin(req)
			if origin == "" {
				return next(c)
			}
			if _, ok := trusted[origin]; ok {
				return next(c)
			}
			if origin == strings.ToLower(schemeOf(req)+"://"+req.Host) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "CSRF Failed: Origin checking failed.")
		}
	}
}

func requestOrigin(r *http.Request) string {
	raw := r.Header.Get("Origin")
	if raw == "null" {
		// opaque origin (sandboxed frame, data: URL) never matches a site
		return raw
	}
	if raw == "" {
		raw = r.Header.Get("Referer")
	}
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
