package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrValidation          = errors.New("validation")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrForbidden           = errors.New("forbidden")
	ErrPrincipalNotFound   = errors.New("principal not found")
)

// PrincipalNotFoundError carries the identifier that failed to resolve.
type PrincipalNotFoundError struct {
	Identifier string
}

func (e *PrincipalNotFoundError) Error() string {
	return fmt.Sprintf("principal not found: %q", e.Identifier)
}

func (e *PrincipalNotFoundError) Is(target error) bool {
	return target == ErrPrincipalNotFound
}
