package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwthelp "github.com/Skotchmaster/book_club/pkg/jwt"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/r", ok)
	e.POST("/r", ok)
	return e
}

func csrfCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			return ck
		}
	}
	t.Fatal("no csrf cookie")
	return nil
}

func TestSafeMethodIssuesToken(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/r", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	ck := csrfCookie(t, rec)
	assert.NotEmpty(t, ck.Value)
	assert.Equal(t, ck.Value, rec.Header().Get("X-CSRF-Token"))
}

func TestUnsafeWithoutSessionPasses(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/r", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUnsafeWithSessionNeedsToken(t *testing.T) {
	e := newEcho()

	get := httptest.NewRecorder()
	e.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/r", nil))
	token := csrfCookie(t, get)

	newReq := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/r", nil)
		req.Header.Set("Origin", "http://example.com")
		req.AddCookie(&http.Cookie{Name: jwthelp.AccessCookie, Value: "session"})
		req.AddCookie(token)
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		return req
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, newReq(""))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, newReq("wrong"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, newReq(token.Value))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUnsafeWithSessionChecksOrigin(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/r", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.AddCookie(&http.Cookie{Name: jwthelp.AccessCookie, Value: "session"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
	req.Header.Set("X-CSRF-Token", "t")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOriginCheckCanBeDisabled(t *testing.T) {
	e := echo.New()
	e.Use(Middleware(Config{DisableSameOriginCheck: true}))
	e.POST("/r", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/r", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.AddCookie(&http.Cookie{Name: jwthelp.AccessCookie, Value: "session"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
	req.Header.Set("X-CSRF-Token", "t")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("abc", "abc"))
	assert.False(t, secureCompare("abc", "abd"))
	assert.False(t, secureCompare("", ""))
	assert.False(t, secureCompare("abc", "ab"))
}
