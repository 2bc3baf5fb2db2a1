package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skotchmaster/book_club/internal/bootstrap"
	"github.com/Skotchmaster/book_club/internal/config"
	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/events"
	"github.com/Skotchmaster/book_club/internal/httpserver"
	"github.com/Skotchmaster/book_club/internal/repo"
	"github.com/Skotchmaster/book_club/internal/search"
	"github.com/Skotchmaster/book_club/internal/service"
	"github.com/Skotchmaster/book_club/pkg/db"
	"github.com/Skotchmaster/book_club/pkg/es"
	"github.com/Skotchmaster/book_club/pkg/kafka"
	"github.com/Skotchmaster/book_club/pkg/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logging.New(logging.Options{})
		boot.Fatal().Err(err).Msg("config_load_failed")
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty}).
		With().Str("service", cfg.ServiceName).Logger()

	if err := run(logging.IntoContext(ctx, log), log, cfg); err != nil {
		log.Fatal().Err(err).Msg("server_failed")
	}
}

func run(ctx context.Context, log zerolog.Logger, cfg *config.Config) error {
	gdb, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error().Err(err).Msg("db_close_failed")
		}
	}()

	if err := repo.Migrate(gdb); err != nil {
		return err
	}
	store := repo.New(gdb)

	if _, err := bootstrap.SeedRoles(ctx, store); err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		prod, err := kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer func() {
			if err := prod.Close(); err != nil {
				log.Error().Err(err).Msg("kafka_close_failed")
			}
		}()
		publisher = events.NewKafka(prod)
	} else {
		log.Info().Msg("kafka_disabled")
	}

	catalog := &service.CatalogService{Store: store, Events: publisher}
	if cfg.ElasticEnabled() {
		client, err := es.NewClient(cfg.ElasticClientConfig())
		if err != nil {
			return err
		}
		index := search.NewProductIndex(client, cfg.Elastic.Index)
		if err := index.EnsureIndex(ctx); err != nil {
			return err
		}
		catalog.Index = index
	}

	principals := service.NewPrincipalResolver(store, cfg.AdminIdentity(), domain.DefaultAuthorityMapping())
	if cfg.Admin.Email == "" {
		log.Warn().Msg("admin_identity_disabled")
	}

	cookies := cfg.SessionCookies()
	e := httpserver.New(log, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Cookies: cookies, Svc: &service.AuthService{
			Store:      store,
			Principals: principals,
			Tokens: service.TokenConfig{
				AccessSecret:  []byte(cfg.JWT.AccessSecret),
				RefreshSecret: []byte(cfg.JWT.RefreshSecret),
				AccessTTL:     cfg.JWT.AccessTTL,
				RefreshTTL:    cfg.JWT.RefreshTTL,
			},
			Events: publisher,
		}},
		Catalog: &httpserver.CatalogHTTP{Svc: catalog},
		Cart:    &httpserver.CartHTTP{Svc: &service.CartService{Store: store, Events: publisher}},
		Admin: &httpserver.AdminHTTP{
			Roles: &service.RoleService{Store: store},
			Users: &service.UserService{Store: store, Events: publisher},
		},
		Health:    &httpserver.HealthHTTP{DB: gdb},
		JWTSecret: []byte(cfg.JWT.AccessSecret),
		Cookies:   cookies,
		CSRF:      cfg.CSRF,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	bootstrap.LogServiceURLs(log, cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting_down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server_shutdown_failed")
	}
	log.Info().Msg("shutdown_complete")
	return nil
}
