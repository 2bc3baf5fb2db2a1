package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/pkg/logging"
	"github.com/Skotchmaster/book_club/pkg/metrics"
)

type UserFinder interface {
	FindActiveUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PrincipalResolver turns a login identifier into a principal.
// The configured administrator is synthesized without touching the store.
type PrincipalResolver struct {
	Users   UserFinder
	Admin   domain.AdminIdentity
	Mapping domain.AuthorityMapping
}

func NewPrincipalResolver(users UserFinder, admin domain.AdminIdentity, mapping domain.AuthorityMapping) *PrincipalResolver {
	return &PrincipalResolver{Users: users, Admin: admin, Mapping: mapping}
}

func (r *PrincipalResolver) isAdmin(identifier string) bool {
	return r.Admin.Email != "" && identifier == r.Admin.Email
}

func (r *PrincipalResolver) Resolve(ctx context.Context, identifier string) (*domain.Principal, error) {
	if r.isAdmin(identifier) {
		metrics.PrincipalResolutions.WithLabelValues("admin").Inc()
		return &domain.Principal{
			UserID:      nil,
			Username:    identifier,
			Password:    r.Admin.Password,
			Authorities: []domain.Authority{domain.AuthorityAdmin},
		}, nil
	}

	user, err := r.Users.FindActiveUserByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.PrincipalResolutions.WithLabelValues("not_found").Inc()
			logging.FromContext(ctx).Debug().Str("identifier", identifier).Msg("principal_not_found")
			return nil, &domain.PrincipalNotFoundError{Identifier: identifier}
		}
		metrics.PrincipalResolutions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve principal %q: %w", identifier, err)
	}

	authority := r.Mapping.For(user.Role.Name)
	metrics.PrincipalResolutions.WithLabelValues(outcomeLabel(authority)).Inc()

	id := user.ID
	return &domain.Principal{
		UserID:      &id,
		Username:    user.Email,
		Password:    user.PasswordHash,
		Authorities: []domain.Authority{authority},
	}, nil
}

func outcomeLabel(a domain.Authority) string {
	switch a {
	case domain.AuthorityUser:
		return "user"
	case domain.AuthorityOrganizer:
		return "organizer"
	case domain.AuthorityAdmin:
		return "admin"
	}
	return "other"
}
