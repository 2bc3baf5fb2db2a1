package httpserver

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/book_club/internal/domain"
	authmw "github.com/Skotchmaster/book_club/internal/middleware/auth"
	"github.com/Skotchmaster/book_club/internal/middleware/csrf"
	jwthelp "github.com/Skotchmaster/book_club/pkg/jwt"
	loggingmw "github.com/Skotchmaster/book_club/pkg/middleware/logging"
)

type Deps struct {
	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Cart    *CartHTTP
	Admin   *AdminHTTP
	Health  *HealthHTTP

	JWTSecret []byte
	Cookies   jwthelp.Cookies
	CSRF      bool

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// New builds the echo instance with global middleware and every route.
func New(log zerolog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Secure())
	e.Use(loggingmw.RequestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "bookclub",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if d.CSRF {
		cfg := csrf.DefaultConfig()
		cfg.Secure = d.Cookies.Secure
		e.Use(csrf.Middleware(cfg))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	authMw := authmw.NewSimpleAuth(d.JWTSecret, d.Cookies)
	api := e.Group("/api/v1")

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/auth/refresh", d.Auth.Refresh)
	api.POST("/auth/logout", d.Auth.LogOut)

	api.GET("/products", d.Catalog.ListProducts)
	api.GET("/products/search", d.Catalog.SearchProducts)
	api.GET("/products/:id", d.Catalog.GetProduct)

	private := api.Group("")
	private.Use(authMw.RequireAuth)
	private.GET("/me", d.Auth.Me)

	curators := private.Group("/admin", authmw.RequireAuthority(domain.AuthorityAdmin, domain.AuthorityOrganizer))
	curators.POST("/authors", d.Catalog.CreateAuthor)
	curators.POST("/books", d.Catalog.CreateBook)
	curators.POST("/products", d.Catalog.AddProduct)

	admin := private.Group("/admin", authmw.RequireAuthority(domain.AuthorityAdmin))
	admin.GET("/roles", d.Admin.ListRoles)
	admin.PATCH("/users/:id/role", d.Admin.ChangeRole)
	admin.DELETE("/users/:id", d.Admin.DeleteUser)

	cart := private.Group("/cart", authmw.RequireAuthority(domain.AuthorityUser, domain.AuthorityOrganizer))
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("", d.Cart.ClearCart)
	cart.DELETE("/items/:product_id", d.Cart.DeleteOneFromCart)
}
