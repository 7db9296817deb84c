package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_hub/internal/db"
	"github.com/Skotchmaster/product_hub/internal/guard"
	"github.com/Skotchmaster/product_hub/internal/handlers"
	"github.com/Skotchmaster/product_hub/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/product_hub/internal/middleware/logging"
	"github.com/Skotchmaster/product_hub/internal/transport"
)

type Deps struct {
	DB             *gorm.DB
	Guard          *guard.Guard
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	SearchHandler  *handlers.SearchHandler

	TrustedOrigins []string
}

// New builds the Echo instance with the shared middleware chain and routes.
func New(d *Deps, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(csrf.OriginCheck(csrf.Config{TrustedOrigins: d.TrustedOrigins}))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.JSON(http.StatusServiceUnavailable, transport.Detail{Detail: "database unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})

	auth := e.Group("/auth")

	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, d.Guard.Identify(), d.Guard.RequireAuthenticated)
	auth.PATCH("/me", d.AuthHandler.UpdateMe, d.Guard.Identify(), d.Guard.RequireAuthenticated)

	products := e.Group("/products", d.Guard.Identify(), d.Guard.RequireAuthenticated)

	products.GET("", d.ProductHandler.GetProducts)
	products.POST("", d.ProductHandler.CreateProduct)
	products.GET("/search", d.SearchHandler.Search)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.PUT("/:id", d.ProductHandler.UpdateProduct)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)
}
