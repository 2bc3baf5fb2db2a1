package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/events"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/pkg/logging"
)

type UserAdminStore interface {
	FindRoleByName(ctx context.Context, name domain.RoleName) (*models.Role, error)
	UpdateUserRole(ctx context.Context, userID, roleID uint) error
	SoftDeleteUser(ctx context.Context, userID uint) (*models.User, error)
}

type UserService struct {
	Store  UserAdminStore
	Events events.Publisher
}

// ChangeRole assigns USER or ORGANIZER. ADMIN is reserved for the configured administrator.
func (s *UserService) ChangeRole(ctx context.Context, userID uint, role string) error {
	name := domain.RoleName(strings.ToUpper(strings.TrimSpace(role)))
	if !name.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if !name.Assignable() {
		return fmt.Errorf("%w: role %q cannot be assigned", domain.ErrValidation, role)
	}

	r, err := s.Store.FindRoleByName(ctx, name)
	if err != nil {
		return fmt.Errorf("find role %s: %w", name, err)
	}
	if err := s.Store.UpdateUserRole(ctx, userID, r.ID); err != nil {
		return err
	}

	logging.FromContext(ctx).Info().Uint("user_id", userID).Str("role", string(name)).Msg("user_role_changed")
	s.Events.Publish(ctx, events.TopicUsers, fmt.Sprint(userID), events.Event{
		"type":    "user_role_changed",
		"user_id": userID,
		"role":    name,
	})
	return nil
}

// DeleteUser soft-deletes the user and revokes its refresh tokens.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	u, err := s.Store.SoftDeleteUser(ctx, userID)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info().Uint("user_id", userID).Msg("user_deleted")
	s.Events.Publish(ctx, events.TopicUsers, fmt.Sprint(userID), events.Event{
		"type":    "user_deleted",
		"user_id": userID,
		"email":   u.Email,
	})
	return nil
}
