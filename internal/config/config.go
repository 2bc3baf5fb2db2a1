package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/pkg/db"
	"github.com/Skotchmaster/book_club/pkg/es"
	jwthelp "github.com/Skotchmaster/book_club/pkg/jwt"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME, default=book-club"`
	ServerHost  string `env:"SERVER_HOST, default=localhost"`
	ServerPort  int    `env:"SERVER_PORT, default=8080"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	LogPretty   bool   `env:"LOG_PRETTY, default=false"`
	CSRF        bool   `env:"CSRF_ENABLED, default=true"`
	// CookieSecure unset means secure everywhere except a loopback SERVER_HOST.
	CookieSecure *bool `env:"COOKIE_SECURE, noinit"`

	DB      DBConfig
	JWT     JWTConfig
	Admin   AdminConfig
	Kafka   KafkaConfig
	Elastic ElasticConfig
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER, default=postgres"`
	URL    string `env:"DATABASE_URL"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TTL, default=15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL, default=168h"`
}

// AdminConfig is the single administrator identity that bypasses the user store.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
}

type ElasticConfig struct {
	URL      string `env:"ES_URL"`
	Username string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	Index    string `env:"ES_INDEX, default=products"`
}

// Load reads .env when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(".env")
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DB.URL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if c.DB.Driver != db.DriverPostgres && c.DB.Driver != db.DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_REFRESH_SECRET"))
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.ServerHost, c.ServerPort)
}

func (c *Config) AdminIdentity() domain.AdminIdentity {
	return domain.AdminIdentity{Email: c.Admin.Email, Password: c.Admin.Password}
}

func (c *Config) ElasticEnabled() bool {
	return c.Elastic.URL != ""
}

func (c *Config) ElasticClientConfig() es.Config {
	return es.Config{URL: c.Elastic.URL, Username: c.Elastic.Username, Password: c.Elastic.Password}
}

func (c *Config) SessionCookies() jwthelp.Cookies {
	secure := !isLoopback(c.ServerHost)
	if c.CookieSecure != nil {
		secure = *c.CookieSecure
	}
	return jwthelp.Cookies{Path: "/", Secure: secure}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
