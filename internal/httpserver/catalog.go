package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/service"
	"github.com/Skotchmaster/book_club/internal/transport"
	"github.com/Skotchmaster/book_club/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParams(c echo.Context) (int, int) {
	return util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	page, size := pageParams(c)
	res, err := h.Svc.ListProducts(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	q := transport.ProductSearchDTO{
		Title:      optional(c.QueryParam("title")),
		AuthorName: optional(c.QueryParam("author")),
	}
	if raw := c.QueryParam("genre"); raw != "" {
		g, ok := domain.ParseGenre(raw)
		if !ok {
			return fmt.Errorf("%w: unknown genre %q", domain.ErrValidation, raw)
		}
		q.Genre = &g
	}

	page, size := pageParams(c)
	res, err := h.Svc.SearchProducts(c.Request().Context(), q, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateAuthor(c echo.Context) error {
	var req transport.CreateAuthorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.Svc.CreateAuthor(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *CatalogHTTP) CreateBook(c echo.Context) error {
	var req transport.CreateBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := h.Svc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *CatalogHTTP) AddProduct(c echo.Context) error {
	var req transport.AddProductDTO
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.AddProduct(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}
