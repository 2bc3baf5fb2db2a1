package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
)

// GetOrCreateCart returns the user's cart with items and their books loaded.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := r.conn(ctx).Where("user_id = ?", userID).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	if err := r.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product.Book").
		First(&cart, cart.ID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) AddToCart(ctx context.Context, cartID, productID, qty uint) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Update("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&models.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}).Error
	})
}

// DeleteOneFromCart decrements the quantity and removes the line when it reaches zero.
func (r *GormRepo) DeleteOneFromCart(ctx context.Context, cartID, productID uint) (bool, error) {
	deleted := false
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := forUpdate(tx).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if item.Quantity > 1 {
			return tx.Model(&item).Update("quantity", gorm.Expr("quantity - 1")).Error
		}
		deleted = true
		return tx.Delete(&item).Error
	})
	return deleted, err
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.conn(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// forUpdate adds a row lock where the dialect supports one.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
