// Package auth authenticates requests from the access token and checks granted authorities.
package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/book_club/internal/domain"
	jwthelp "github.com/Skotchmaster/book_club/pkg/jwt"
	"github.com/Skotchmaster/book_club/pkg/logging"
	"github.com/Skotchmaster/book_club/pkg/tokens"
)

const principalKey = "principal"

type SimpleAuth struct {
	JWTSecret []byte
	Cookies   jwthelp.Cookies
}

func NewSimpleAuth(secret []byte, cookies jwthelp.Cookies) *SimpleAuth {
	return &SimpleAuth{JWTSecret: secret, Cookies: cookies}
}

// AccessToken reads the access token from the cookie, or from a Bearer header.
func AccessToken(c echo.Context) string {
	if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (m *SimpleAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := AccessToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			c.SetCookie(m.Cookies.Expire(jwthelp.AccessCookie))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		p := &domain.Principal{
			UserID:      claims.UserID,
			Username:    claims.Subject,
			Authorities: make([]domain.Authority, 0, len(claims.Authorities)),
		}
		for _, a := range claims.Authorities {
			p.Authorities = append(p.Authorities, domain.Authority(a))
		}
		c.Set(principalKey, p)

		l := logging.FromContext(c.Request().Context()).With().Str("principal", p.Username).Logger()
		c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))

		return next(c)
	}
}

// RequireAuthority lets the request through when the principal holds any of want.
func RequireAuthority(want ...domain.Authority) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if !p.HasAuthority(want...) {
				logging.FromContext(c.Request().Context()).Warn().
					Strs("granted", p.AuthorityStrings()).
					Msg("access_denied")
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			return next(c)
		}
	}
}

func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	p, ok := c.Get(principalKey).(*domain.Principal)
	return p, ok && p != nil
}
