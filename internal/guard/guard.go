package guard

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_hub/internal/logging"
	"github.com/Skotchmaster/product_hub/internal/models"
	"github.com/Skotchmaster/product_hub/internal/session"
)

const userKey = "user"

const (
	msgInvalidAccess = "Invalid access token"
	msgNotProvided   = "Authentication credentials were not provided."
)

var (
	ErrForbidden = errors.New("forbidden")
	errInactive  = errors.New("user inactive")
)

type TokenValidator interface {
	ValidateAccess(raw string) (uint, error)
}

type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Guard struct {
	Tokens  TokenValidator
	Users   UserLoader
	Session *session.Transport
}

// Identify resolves the caller from the access cookie. Requests without the
// cookie continue anonymously; a cookie that does not resolve to an active
// user is rejected.
func (g *Guard) Identify() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  userKey,
		TokenLookup: "cookie:" + session.AccessCookie,
		ParseTokenFunc: func(c echo.Context, raw string) (any, error) {
			return g.resolve(c.Request().Context(), raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if _, ok := g.Session.Extract(c); !ok {
				return nil
			}
			logging.FromContext(c.Request().Context()).With("handler", "guard.identify").
				Warn("identify_error", "status", http.StatusUnauthorized, "reason", "access token rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidAccess)
		},
		SuccessHandler: func(c echo.Context) {
			if u := CurrentUser(c); u != nil {
				c.SetRequest(c.Request().WithContext(logging.WithUser(c.Request().Context(), u.ID)))
			}
		},
		ContinueOnIgnoredError: true,
	})
}

func (g *Guard) resolve(ctx context.Context, raw string) (*models.User, error) {
	id, err := g.Tokens.ValidateAccess(raw)
	if err != nil {
		return nil, err
	}
	user, err := g.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errInactive
	}
	return user, nil
}

func (g *Guard) RequireAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, msgNotProvided)
		}
		return next(c)
	}
}

// CurrentUser returns the identified caller or nil for anonymous requests.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func SetCurrentUser(c echo.Context, u *models.User) {
	c.Set(userKey, u)
}

func RequireOwnership(identity *models.User, product *models.Product) error {
	if identity == nil || product.CreatorID != identity.ID {
		return ErrForbidden
	}
	return nil
}
