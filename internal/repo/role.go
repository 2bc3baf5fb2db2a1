package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
)

func (r *GormRepo) CountRoles(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn(ctx).Model(&models.Role{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRepo) InsertRole(ctx context.Context, role *models.Role) error {
	return r.conn(ctx).Create(role).Error
}

func (r *GormRepo) FindRoleByName(ctx context.Context, name domain.RoleName) (*models.Role, error) {
	var role models.Role
	if err := r.conn(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.conn(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
