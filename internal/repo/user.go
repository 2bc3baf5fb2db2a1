package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
)

// FindActiveUserByEmail skips soft-deleted users.
func (r *GormRepo) FindActiveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.conn(ctx).
		Preload("Role").
		Where("email = ? AND deleted = ?", email, false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser fails with ErrUserExists when the email is taken, soft-deleted rows included.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := r.conn(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrUserExists
	}
	if err := r.conn(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *GormRepo) UpdateUserRole(ctx context.Context, userID, roleID uint) error {
	res := r.conn(ctx).Model(&models.User{}).
		Where("id = ? AND deleted = ?", userID, false).
		Update("role_id", roleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SoftDeleteUser flags the user and revokes every refresh token it holds.
func (r *GormRepo) SoftDeleteUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.InTx(ctx, func(ctx context.Context) error {
		if err := r.conn(ctx).Where("id = ? AND deleted = ?", userID, false).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		if err := r.conn(ctx).Model(&user).Update("deleted", true).Error; err != nil {
			return err
		}
		return r.RevokeRefreshBySubject(ctx, user.Email)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
