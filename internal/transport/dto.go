package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/book_club/internal/domain"
)

type ProductDTO struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    domain.Genre    `json:"category"`
}

// ProductSearchDTO filters are optional; nil means "any".
type ProductSearchDTO struct {
	Title      *string       `json:"title,omitempty"`
	AuthorName *string       `json:"author_name,omitempty"`
	Genre      *domain.Genre `json:"genre,omitempty"`
}

type AddProductDTO struct {
	BookID   uint `json:"book_id"   validate:"required"`
	AuthorID uint `json:"author_id" validate:"required"`
}

type CartDTO struct {
	ID         uint            `json:"id"`
	UserID     uint            `json:"user_id"`
	Items      map[uint]uint   `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type RoleDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CredentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateAuthorRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateBookRequest struct {
	Title       string          `json:"title"       validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Genre       string          `json:"genre"       validate:"required"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  uint `json:"quantity"   validate:"omitempty,min=1"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Principal    *domain.Principal
}

type MeResponse struct {
	UserID      *uint    `json:"user_id"`
	Email       string   `json:"email"`
	Authorities []string `json:"authorities"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ProductPage struct {
	Data []ProductDTO `json:"data"`
	Meta PageMeta     `json:"meta"`
}
