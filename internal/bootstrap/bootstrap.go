// Package bootstrap prepares reference data and announces the service on startup.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Skotchmaster/book_club/internal/config"
	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/pkg/logging"
	"github.com/Skotchmaster/book_club/pkg/metrics"
)

type RoleRegistry interface {
	CountRoles(ctx context.Context) (int64, error)
	InsertRole(ctx context.Context, role *models.Role) error
	// InTx runs fn atomically; registry calls made with fn's ctx join the transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeedRoles inserts USER, ORGANIZER and ADMIN when the registry is empty.
// The count and the inserts share one transaction, so a failed boot leaves no partial set behind.
// It reports whether anything was inserted.
func SeedRoles(ctx context.Context, registry RoleRegistry) (bool, error) {
	log := logging.FromContext(ctx)

	var count int64
	seeded := false
	err := registry.InTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = registry.CountRoles(ctx)
		if err != nil {
			return fmt.Errorf("count roles: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, r := range domain.SeedRoles {
			role := models.Role{Name: r.Name, Description: r.Description}
			if err := registry.InsertRole(ctx, &role); err != nil {
				return fmt.Errorf("insert role %s: %w", r.Name, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !seeded {
		log.Debug().Int64("roles", count).Msg("roles_seed_skipped")
		return false, nil
	}

	metrics.RolesSeeded.Add(float64(len(domain.SeedRoles)))
	log.Info().Int("roles", len(domain.SeedRoles)).Msg("roles_seeded")
	return true, nil
}

func LogServiceURLs(log zerolog.Logger, cfg *config.Config) {
	base := cfg.BaseURL()
	log.Info().
		Str("service", cfg.ServiceName).
		Str("url", base).
		Msg("service_started")
	log.Info().Str("url", base+"/health/live").Msg("liveness_endpoint")
	log.Info().Str("url", base+"/health/ready").Msg("readiness_endpoint")
	log.Info().Str("url", base+"/metrics").Msg("metrics_endpoint")
	log.Info().Str("url", base+"/api/v1").Msg("api_endpoint")
}
