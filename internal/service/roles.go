package service

import (
	"context"

	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/internal/transport"
)

type RoleLister interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
}

type RoleService struct {
	Store RoleLister
}

func (s *RoleService) ListRoles(ctx context.Context) ([]transport.RoleDTO, error) {
	roles, err := s.Store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.RoleDTO, 0, len(roles))
	for _, r := range roles {
		out = append(out, transport.RoleDTO{ID: r.ID, Title: string(r.Name), Description: r.Description})
	}
	return out, nil
}
