package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/book_club/internal/service"
	"github.com/Skotchmaster/book_club/internal/transport"
	jwthelp "github.com/Skotchmaster/book_club/pkg/jwt"
	"github.com/Skotchmaster/book_club/pkg/logging"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies jwthelp.Cookies
}

type tokenResponse struct {
	Email        string   `json:"email"`
	UserID       *uint    `json:"user_id"`
	Authorities  []string `json:"authorities"`
	IsAdmin      bool     `json:"is_admin"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresAt    int64    `json:"expires_at"`
}

func (h *AuthHTTP) setSession(c echo.Context, res *transport.LoginResult) error {
	c.SetCookie(h.Cookies.Session(jwthelp.AccessCookie, res.AccessToken, res.AccessExp))
	c.SetCookie(h.Cookies.Session(jwthelp.RefreshCookie, res.RefreshToken, res.RefreshExp))

	return c.JSON(http.StatusOK, tokenResponse{
		Email:        res.Principal.Username,
		UserID:       res.Principal.UserID,
		Authorities:  res.Principal.AuthorityStrings(),
		IsAdmin:      res.Principal.IsAdmin(),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.AccessExp.Unix(),
	})
}

func (h *AuthHTTP) clearSession(c echo.Context) {
	c.SetCookie(h.Cookies.Expire(jwthelp.AccessCookie))
	c.SetCookie(h.Cookies.Expire(jwthelp.RefreshCookie))
}

// refreshToken prefers the cookie and falls back to a JSON body.
func refreshToken(c echo.Context) string {
	if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&body); err != nil {
		return ""
	}
	return body.RefreshToken
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Int("status", 400).Msg("register_error")
		return err
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role.Name,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info().Str("email", req.Email).Msg("login_successful")
	return h.setSession(c, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	raw := refreshToken(c)
	if raw == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	res, err := h.Svc.Refresh(c.Request().Context(), raw)
	if err != nil {
		h.clearSession(c)
		return err
	}
	return h.setSession(c, res)
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.Svc.LogOut(ctx, refreshToken(c))
	h.clearSession(c)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info().Msg("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.MeResponse{
		UserID:      p.UserID,
		Email:       p.Username,
		Authorities: p.AuthorityStrings(),
	})
}
