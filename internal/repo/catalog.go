package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/internal/transport"
)

func (r *GormRepo) CreateAuthor(ctx context.Context, a *models.Author) error {
	return r.conn(ctx).Create(a).Error
}

func (r *GormRepo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.conn(ctx).Create(b).Error
}

func (r *GormRepo) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	var a models.Author
	if err := r.conn(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *GormRepo) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := r.conn(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// CreateProduct returns ErrConflict when the book is already listed with that author.
func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := r.conn(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return r.conn(ctx).Preload("Book").Preload("Author").First(p, p.ID).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.conn(ctx).Preload("Book").Preload("Author").First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.conn(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.conn(ctx).
		Preload("Book").Preload("Author").
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// GetProductsByIDs keeps the order of ids and silently skips missing rows.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Product
	if err := r.conn(ctx).Preload("Book").Preload("Author").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchProducts matches title and author name as case-insensitive substrings.
func (r *GormRepo) SearchProducts(ctx context.Context, q transport.ProductSearchDTO, offset, limit int) (int64, []models.Product, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&models.Product{}).
			Joins("JOIN books ON books.id = products.book_id").
			Joins("JOIN authors ON authors.id = products.author_id")
		if q.Title != nil && strings.TrimSpace(*q.Title) != "" {
			db = db.Where(`LOWER(books.title) LIKE ? ESCAPE '\'`, likePattern(*q.Title))
		}
		if q.AuthorName != nil && strings.TrimSpace(*q.AuthorName) != "" {
			db = db.Where(`LOWER(authors.name) LIKE ? ESCAPE '\'`, likePattern(*q.AuthorName))
		}
		if q.Genre != nil {
			db = db.Where("books.genre = ?", *q.Genre)
		}
		return db
	}

	var total int64
	if err := r.conn(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.conn(ctx).Scopes(scope).
		Select("products.*").
		Preload("Book").Preload("Author").
		Order("products.id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches s as a literal substring; wildcards in s are escaped with a backslash.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
