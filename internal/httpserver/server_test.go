package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/book_club/internal/bootstrap"
	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/repo"
	"github.com/Skotchmaster/book_club/internal/service"
	"github.com/Skotchmaster/book_club/internal/testutil"
	jwthelp "github.com/Skotchmaster/book_club/pkg/jwt"
)

type testEnv struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	events *testutil.Events
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := testutil.NewSQLite(t)
	r := repo.New(gdb)
	_, err := bootstrap.SeedRoles(context.Background(), r)
	require.NoError(t, err)

	ev := &testutil.Events{}
	secret := []byte("test-jwt-secret")
	principals := service.NewPrincipalResolver(r, domain.AdminIdentity{Email: "admin@x.com", Password: "secret"}, domain.DefaultAuthorityMapping())

	reg := prometheus.NewRegistry()
	cookies := jwthelp.Cookies{Path: "/", Secure: true}
	e := New(zerolog.Nop(), &Deps{
		Auth: &AuthHTTP{Cookies: cookies, Svc: &service.AuthService{
			Store:      r,
			Principals: principals,
			Tokens: service.TokenConfig{
				AccessSecret:  secret,
				RefreshSecret: []byte("test-refresh-secret"),
				AccessTTL:     15 * time.Minute,
				RefreshTTL:    time.Hour,
			},
			Events: ev,
		}},
		Catalog:    &CatalogHTTP{Svc: &service.CatalogService{Store: r, Events: ev}},
		Cart:       &CartHTTP{Svc: &service.CartService{Store: r, Events: ev}},
		Admin:      &AdminHTTP{Roles: &service.RoleService{Store: r}, Users: &service.UserService{Store: r, Events: ev}},
		Health:     &HealthHTTP{DB: gdb},
		JWTSecret:  secret,
		Cookies:    cookies,
		CSRF:       true,
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testEnv{e: e, repo: r, events: ev}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (env *testEnv) login(t *testing.T, email, password string) tokenResponse {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenResponse](t, rec)
}

func (env *testEnv) register(t *testing.T, email string) uint {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": email, "password": "password1"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return uint(decode[map[string]any](t, rec)["id"].(float64))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", nil, "").Code)
	rec := env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","db":"up"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookclub_requests_total")
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "reader@club.test")

	res := env.login(t, "reader@club.test", "password1")
	assert.Equal(t, []string{"ROLE_USER"}, res.Authorities)
	assert.False(t, res.IsAdmin)
	require.NotNil(t, res.UserID)
	assert.Equal(t, id, *res.UserID)

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil, res.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"user_id":%d,"email":"reader@club.test","authorities":["ROLE_USER"]}`, id), rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/me", nil, "").Code)
}

func TestLoginSetsCookies(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@x.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		got[ck.Name] = ck
	}
	for _, name := range []string{jwthelp.AccessCookie, jwthelp.RefreshCookie} {
		require.Contains(t, got, name)
		assert.True(t, got[name].HttpOnly, name)
		assert.True(t, got[name].Secure, name)
		assert.NotEmpty(t, got[name].Value, name)
	}
	require.Contains(t, got, "XSRF-TOKEN")
	assert.True(t, got["XSRF-TOKEN"].Secure)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == jwthelp.AccessCookie || ck.Name == jwthelp.RefreshCookie {
			assert.Empty(t, ck.Value)
			assert.True(t, ck.Secure)
		}
	}
}

func TestRegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dup@club.test")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "dup@club.test", "password": "password1"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"user already exists"}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "not-an-email", "password": "password1"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "email must be a valid email")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "admin@x.com", "password": "password1"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "reader@club.test")

	for _, body := range []map[string]string{
		{"email": "reader@club.test", "password": "wrong-password"},
		{"email": "nobody@club.test", "password": "password1"},
	} {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
	}
}

func TestCatalogFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@x.com", "secret")

	rec := env.do(t, http.MethodPost, "/api/v1/admin/authors", map[string]string{"name": "Frank Herbert"}, admin.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	authorID := decode[map[string]any](t, rec)["id"]

	rec = env.do(t, http.MethodPost, "/api/v1/admin/books", map[string]any{
		"title": "Dune", "description": "Spice", "price": "9.99", "genre": "science_fiction",
	}, admin.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bookID := decode[map[string]any](t, rec)["id"]

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", map[string]any{"book_id": bookID, "author_id": authorID}, admin.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[map[string]any](t, rec)
	assert.Equal(t, "Dune", product["name"])
	assert.Equal(t, "SCIENCE_FICTION", product["category"])
	assert.Equal(t, "9.99", product["price"])

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", map[string]any{"book_id": bookID, "author_id": authorID}, admin.AccessToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products?page=1&size=10", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, page["meta"].(map[string]any)["total"])

	rec = env.do(t, http.MethodGet, "/api/v1/products/search?author=herb&genre=SCIENCE_FICTION", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["data"], 1)

	rec = env.do(t, http.MethodGet, "/api/v1/products/search?genre=cooking", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%v", product["id"]), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/products/999", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/products/abc", nil, "").Code)

	assert.Contains(t, env.events.Types(), "product_added")
}

func TestAuthorization(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "reader@club.test")
	member := env.login(t, "reader@club.test", "password1")
	admin := env.login(t, "admin@x.com", "secret")

	rec := env.do(t, http.MethodPost, "/api/v1/admin/authors", map[string]string{"name": "X"}, member.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/v1/admin/roles", nil, member.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/v1/cart", nil, admin.AccessToken).Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/roles", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	roles := decode[[]map[string]any](t, rec)
	require.Len(t, roles, 3)
	assert.Equal(t, "USER", roles[0]["title"])
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@x.com", "secret")

	rec := env.do(t, http.MethodPost, "/api/v1/admin/authors", map[string]string{"name": "Tolkien"}, admin.AccessToken)
	authorID := decode[map[string]any](t, rec)["id"]
	rec = env.do(t, http.MethodPost, "/api/v1/admin/books", map[string]any{"title": "The Hobbit", "price": 12.5, "genre": "FANTASY"}, admin.AccessToken)
	bookID := decode[map[string]any](t, rec)["id"]
	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", map[string]any{"book_id": bookID, "author_id": authorID}, admin.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	productID := decode[map[string]any](t, rec)["id"]

	env.register(t, "reader@club.test")
	member := env.login(t, "reader@club.test", "password1")

	rec = env.do(t, http.MethodPost, "/api/v1/cart", map[string]any{"product_id": productID, "quantity": 3}, member.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[map[string]any](t, rec)
	assert.Equal(t, "37.5", cart["total_price"])
	assert.Equal(t, map[string]any{fmt.Sprint(productID): float64(3)}, cart["items"])

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/cart/items/%v", productID), nil, member.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "25", decode[map[string]any](t, rec)["total_price"])

	rec = env.do(t, http.MethodDelete, "/api/v1/cart", nil, member.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec)["items"])

	rec = env.do(t, http.MethodPost, "/api/v1/cart", map[string]any{"product_id": 999}, member.AccessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminChangesRoleAndDeletesUser(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "reader@club.test")
	member := env.login(t, "reader@club.test", "password1")
	admin := env.login(t, "admin@x.com", "secret")

	path := fmt.Sprintf("/api/v1/admin/users/%d/role", id)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPatch, path, map[string]string{"role": "ADMIN"}, admin.AccessToken).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPatch, path, map[string]string{"role": "ORGANIZER"}, admin.AccessToken).Code)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": member.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	refreshed := decode[tokenResponse](t, rec)
	assert.Equal(t, []string{"ROLE_ORGANIZER"}, refreshed.Authorities)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/authors", map[string]string{"name": "New"}, refreshed.AccessToken)
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", id), nil, admin.AccessToken).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", id), nil, admin.AccessToken).Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": refreshed.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "reader@club.test", "password": "password1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogOut(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin@x.com", "secret")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", map[string]string{"refresh_token": admin.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": admin.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/v1/auth/refresh", nil, "").Code)
}
