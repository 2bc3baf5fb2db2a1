package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/events"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/internal/transport"
)

type CartStore interface {
	GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error)
	AddToCart(ctx context.Context, cartID, productID, qty uint) error
	DeleteOneFromCart(ctx context.Context, cartID, productID uint) (bool, error)
	ClearCart(ctx context.Context, cartID uint) error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

type CartService struct {
	Store  CartStore
	Events events.Publisher
}

// owner returns the stored user behind p. The configured administrator has no cart.
func owner(p *domain.Principal) (uint, error) {
	if p == nil || p.UserID == nil {
		return 0, fmt.Errorf("%w: only stored users have a cart", domain.ErrForbidden)
	}
	return *p.UserID, nil
}

func (s *CartService) GetCart(ctx context.Context, p *domain.Principal) (*transport.CartDTO, error) {
	userID, err := owner(p)
	if err != nil {
		return nil, err
	}
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CartToDTO(cart), nil
}

func (s *CartService) AddToCart(ctx context.Context, p *domain.Principal, productID, qty uint) (*transport.CartDTO, error) {
	userID, err := owner(p)
	if err != nil {
		return nil, err
	}
	if qty == 0 {
		qty = 1
	}
	if _, err := s.Store.GetProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("product %d: %w", productID, err)
	}

	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.AddToCart(ctx, cart.ID, productID, qty); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, events.TopicCarts, fmt.Sprint(userID), events.Event{
		"type":       "add_to_cart",
		"user_id":    userID,
		"product_id": productID,
		"quantity":   qty,
	})
	return s.reload(ctx, userID)
}

func (s *CartService) DeleteOneFromCart(ctx context.Context, p *domain.Principal, productID uint) (*transport.CartDTO, error) {
	userID, err := owner(p)
	if err != nil {
		return nil, err
	}
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	removed, err := s.Store.DeleteOneFromCart(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, events.TopicCarts, fmt.Sprint(userID), events.Event{
		"type":       "delete_one_from_cart",
		"user_id":    userID,
		"product_id": productID,
		"removed":    removed,
	})
	return s.reload(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, p *domain.Principal) (*transport.CartDTO, error) {
	userID, err := owner(p)
	if err != nil {
		return nil, err
	}
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.ClearCart(ctx, cart.ID); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, events.TopicCarts, fmt.Sprint(userID), events.Event{
		"type":    "cart_cleared",
		"user_id": userID,
	})
	return s.reload(ctx, userID)
}

func (s *CartService) reload(ctx context.Context, userID uint) (*transport.CartDTO, error) {
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CartToDTO(cart), nil
}

// CartToDTO needs Items[].Product.Book loaded for the total.
func CartToDTO(c *models.Cart) *transport.CartDTO {
	items := make(map[uint]uint, len(c.Items))
	total := decimal.Zero
	for _, it := range c.Items {
		items[it.ProductID] += it.Quantity
		total = total.Add(it.Product.Book.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return &transport.CartDTO{
		ID:         c.ID,
		UserID:     c.UserID,
		Items:      items,
		TotalPrice: total,
	}
}
