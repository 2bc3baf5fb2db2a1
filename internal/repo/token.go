package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
)

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.conn(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.conn(ctx).Where("jti = ?", jti).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}
	return &t, nil
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction.
// Revocation is conditional so two concurrent rotations cannot both succeed.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken) error {
	return r.InTx(ctx, func(ctx context.Context) error {
		old, err := r.FindRefreshByJTI(ctx, oldJTI)
		if err != nil {
			return err
		}
		if old.Token != oldHash || old.Revoked || old.ExpiresAt < time.Now().Unix() {
			return domain.ErrInvalidRefreshToken
		}
		res := r.conn(ctx).Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidRefreshToken
		}
		return r.AddRefreshToken(ctx, next)
	})
}

func (r *GormRepo) RevokeRefreshByHash(ctx context.Context, hash string) error {
	return r.conn(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", hash).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeRefreshBySubject(ctx context.Context, subject string) error {
	return r.conn(ctx).Model(&models.RefreshToken{}).
		Where("subject = ?", subject).
		Update("revoked", true).Error
}
