package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_hub/internal/guard"
	"github.com/Skotchmaster/product_hub/internal/logging"
	"github.com/Skotchmaster/product_hub/internal/service"
	"github.com/Skotchmaster/product_hub/internal/session"
	"github.com/Skotchmaster/product_hub/internal/tokens"
	"github.com/Skotchmaster/product_hub/internal/transport"
)

type AuthHandler struct {
	Svc     *service.AuthService
	Session *session.Transport
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	_, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, service.ErrValidation):
		return validationError(err)
	default:
		return internalError()
	}

	return c.JSON(http.StatusCreated, transport.Detail{Detail: "User created successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	_, pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return internalError()
	}

	h.Session.Attach(c, pair.Access, pair.Refresh)
	return c.JSON(http.StatusOK, transport.Detail{Detail: "Login successful"})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	raw, ok := h.Session.ExtractRefresh(c)
	if !ok {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "No refresh token provided")
	}

	access, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		if tokens.IsAuthError(err) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
		}
		return internalError()
	}

	h.Session.AttachAccessOnly(c, access)
	return c.JSON(http.StatusOK, transport.Detail{Detail: "Token refreshed"})
}

// Logout always clears the cookies; revocation is best effort.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	raw, _ := h.Session.ExtractRefresh(c)
	if err := h.Svc.Logout(ctx, raw); err != nil {
		l.Error("logout_error", "status", 200, "reason", "cannot revoke refresh token", "error", err)
	}

	h.Session.Clear(c)
	l.Info("logout_success")
	return c.JSON(http.StatusOK, transport.Detail{Detail: "Logout successful"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.NewUserResponse(guard.CurrentUser(c)))
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_me")

	var req transport.PatchProfileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	user, err := h.Svc.UpdateProfile(ctx, guard.CurrentUser(c).ID, service.ProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrValidation):
		return validationError(err)
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
	default:
		l.Error("update_profile_error", "status", 500, "error", err)
		return internalError()
	}

	l.Info("update_profile_success")
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}
