package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/book_club/internal/service"
	"github.com/Skotchmaster/book_club/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.GetCart(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cart, err := h.Svc.AddToCart(c.Request().Context(), p, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) DeleteOneFromCart(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	productID, err := parseID(c, "product_id")
	if err != nil {
		return err
	}
	cart, err := h.Svc.DeleteOneFromCart(c.Request().Context(), p, productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.ClearCart(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}
