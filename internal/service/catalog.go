package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/events"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/internal/search"
	"github.com/Skotchmaster/book_club/internal/transport"
	"github.com/Skotchmaster/book_club/internal/util"
	"github.com/Skotchmaster/book_club/pkg/logging"
)

type CatalogStore interface {
	CreateAuthor(ctx context.Context, a *models.Author) error
	CreateBook(ctx context.Context, b *models.Book) error
	GetAuthor(ctx context.Context, id uint) (*models.Author, error)
	GetBook(ctx context.Context, id uint) (*models.Book, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	SearchProducts(ctx context.Context, q transport.ProductSearchDTO, offset, limit int) (int64, []models.Product, error)
}

// ProductIndex is the optional full-text index kept next to the store.
type ProductIndex interface {
	IndexProduct(ctx context.Context, doc search.ProductDocument) error
	Search(ctx context.Context, q transport.ProductSearchDTO, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Store  CatalogStore
	Index  ProductIndex
	Events events.Publisher
}

func (s *CatalogService) CreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: author name is required", domain.ErrValidation)
	}
	a := models.Author{Name: name}
	if err := s.Store.CreateAuthor(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, req transport.CreateBookRequest) (*models.Book, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	genre, ok := domain.ParseGenre(req.Genre)
	if !ok {
		return nil, fmt.Errorf("%w: unknown genre %q", domain.ErrValidation, req.Genre)
	}

	b := models.Book{Title: title, Description: req.Description, Price: req.Price, Genre: genre}
	if err := s.Store.CreateBook(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// AddProduct lists an existing book under one of its authors.
func (s *CatalogService) AddProduct(ctx context.Context, req transport.AddProductDTO) (*transport.ProductDTO, error) {
	l := logging.FromContext(ctx).With().Str("svc", "catalog.add_product").Logger()

	if _, err := s.Store.GetBook(ctx, req.BookID); err != nil {
		return nil, fmt.Errorf("book %d: %w", req.BookID, err)
	}
	if _, err := s.Store.GetAuthor(ctx, req.AuthorID); err != nil {
		return nil, fmt.Errorf("author %d: %w", req.AuthorID, err)
	}

	p := models.Product{BookID: req.BookID, AuthorID: req.AuthorID}
	if err := s.Store.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, search.DocumentFromProduct(&p)); err != nil {
			l.Error().Err(err).Uint("product_id", p.ID).Msg("product_index_failed")
		}
	}
	s.Events.Publish(ctx, events.TopicProducts, fmt.Sprint(p.ID), events.Event{
		"type":       "product_added",
		"product_id": p.ID,
		"book_id":    p.BookID,
		"author_id":  p.AuthorID,
	})
	l.Info().Uint("product_id", p.ID).Msg("product_added")

	dto := ProductToDTO(&p)
	return &dto, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*transport.ProductDTO, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ProductToDTO(p)
	return &dto, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, size int) (*transport.ProductPage, error) {
	page, size, offset := util.Calculate(page, size)
	total, items, err := s.Store.GetProducts(ctx, offset, size)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, size), nil
}

// SearchProducts uses the index when one is configured and the store otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, q transport.ProductSearchDTO, page, size int) (*transport.ProductPage, error) {
	if q.Genre != nil && !q.Genre.Valid() {
		return nil, fmt.Errorf("%w: unknown genre %q", domain.ErrValidation, *q.Genre)
	}
	page, size, offset := util.Calculate(page, size)

	if s.Index == nil {
		total, items, err := s.Store.SearchProducts(ctx, q, offset, size)
		if err != nil {
			return nil, err
		}
		return newPage(items, total, page, size), nil
	}

	total, ids, err := s.Index.Search(ctx, q, offset, size)
	if err != nil {
		return nil, err
	}
	items, err := s.Store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, size), nil
}

func ProductToDTO(p *models.Product) transport.ProductDTO {
	return transport.ProductDTO{
		ID:          p.ID,
		Name:        p.Book.Title,
		Description: p.Book.Description,
		Price:       p.Book.Price,
		Category:    p.Book.Genre,
	}
}

func newPage(items []models.Product, total int64, page, size int) *transport.ProductPage {
	data := make([]transport.ProductDTO, 0, len(items))
	for i := range items {
		data = append(data, ProductToDTO(&items[i]))
	}
	return &transport.ProductPage{
		Data: data,
		Meta: transport.PageMeta{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: util.TotalPages(total, size),
		},
	}
}
