// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/pkg/db"
)

// NewSQLite opens a migrated in-memory database that is closed with the test.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// SeedRoles inserts the reference roles in their usual order and returns them by name.
func SeedRoles(t testing.TB, gdb *gorm.DB) map[domain.RoleName]models.Role {
	t.Helper()

	out := make(map[domain.RoleName]models.Role, len(domain.SeedRoles))
	for _, r := range domain.SeedRoles {
		role := models.Role{Name: r.Name, Description: r.Description}
		require.NoError(t, gdb.Create(&role).Error)
		out[r.Name] = role
	}
	return out
}

// CreateUser stores an active user with the given role.
func CreateUser(t testing.TB, gdb *gorm.DB, email string, role models.Role) models.User {
	t.Helper()

	u := models.User{Email: email, PasswordHash: "hash-" + email, RoleID: role.ID}
	require.NoError(t, gdb.Create(&u).Error)
	u.Role = role
	return u
}
