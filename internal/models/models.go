package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/book_club/internal/domain"
)

type Role struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        domain.RoleName `gorm:"uniqueIndex;not null"      json:"name"`
	Description string          `gorm:"not null;default:''"       json:"description"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	RoleID       uint      `gorm:"index;not null"            json:"role_id"`
	Role         Role      `gorm:"foreignKey:RoleID"         json:"role"`
	Deleted      bool      `gorm:"index;not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Author struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name string `gorm:"index;not null"            json:"name"`
}

type Book struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	Title       string          `gorm:"index;not null"            json:"title"`
	Description string          `gorm:"not null;default:''"       json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Genre       domain.Genre    `gorm:"index;not null"            json:"genre"`
}

// Product is a catalog listing that links an existing book with one of its authors.
type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"               json:"id"`
	BookID    uint      `gorm:"uniqueIndex:idx_book_author;not null"   json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID"                      json:"book"`
	AuthorID  uint      `gorm:"uniqueIndex:idx_book_author;not null"   json:"author_id"`
	Author    Author    `gorm:"foreignKey:AuthorID"                    json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type Cart struct {
	ID     uint       `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID uint       `gorm:"uniqueIndex;not null"      json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID"         json:"items"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"                  json:"id"`
	CartID    uint    `gorm:"uniqueIndex:idx_cart_product;not null"     json:"cart_id"`
	ProductID uint    `gorm:"uniqueIndex:idx_cart_product;not null"     json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID"                      json:"-"`
	Quantity  uint    `gorm:"not null;default:1;check:quantity>0"       json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// RefreshToken stores only the sha256 of the issued token.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"            json:"id"`
	Subject   string `gorm:"index;not null"        json:"subject"`
	Token     string `gorm:"uniqueIndex;not null"  json:"-"`
	JTI       string `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt int64  `gorm:"not null"              json:"expires_at"`
	Revoked   bool   `gorm:"not null;default:false" json:"revoked"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Role{},
		&User{},
		&Author{},
		&Book{},
		&Product{},
		&Cart{},
		&CartItem{},
		&RefreshToken{},
	}
}
