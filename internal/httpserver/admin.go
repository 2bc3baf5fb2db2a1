package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/book_club/internal/service"
	"github.com/Skotchmaster/book_club/internal/transport"
)

type AdminHTTP struct {
	Roles *service.RoleService
	Users *service.UserService
}

func (h *AdminHTTP) ListRoles(c echo.Context) error {
	roles, err := h.Roles.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *AdminHTTP) ChangeRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req transport.ChangeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.Users.ChangeRole(c.Request().Context(), id, req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Users.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
