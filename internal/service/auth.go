package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/book_club/internal/domain"
	"github.com/Skotchmaster/book_club/internal/events"
	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/internal/transport"
	pkg_hash "github.com/Skotchmaster/book_club/pkg/hash"
	jwthelp "github.com/Skotchmaster/book_club/pkg/jwt"
	"github.com/Skotchmaster/book_club/pkg/logging"
	"github.com/Skotchmaster/book_club/pkg/tokens"
)

type AuthStore interface {
	UserFinder
	CreateUser(ctx context.Context, u *models.User) error
	FindRoleByName(ctx context.Context, name domain.RoleName) (*models.Role, error)
	AddRefreshToken(ctx context.Context, t *models.RefreshToken) error
	RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken) error
	RevokeRefreshByHash(ctx context.Context, hash string) error
}

type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type AuthService struct {
	Store      AuthStore
	Principals *PrincipalResolver
	Tokens     TokenConfig
	Events     events.Publisher
	Now        func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With().Str("svc", "auth.register").Logger()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if s.Principals.isAdmin(email) {
		l.Warn().Int("status", 409).Str("reason", "reserved email").Msg("register_error")
		return nil, domain.ErrUserExists
	}

	role, err := s.Store.FindRoleByName(ctx, s.Principals.Mapping.Baseline)
	if err != nil {
		l.Error().Err(err).Int("status", 500).Str("reason", "baseline role missing").Msg("register_error")
		return nil, fmt.Errorf("find baseline role: %w", err)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error().Err(err).Int("status", 500).Str("reason", "cannot hash the password").Msg("register_error")
		return nil, err
	}

	user := models.User{Email: email, PasswordHash: pwHash, RoleID: role.ID}
	if err := s.Store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			l.Warn().Int("status", 409).Str("reason", "user already exist").Msg("register_error")
			return nil, err
		}
		l.Error().Err(err).Int("status", 500).Msg("register_error")
		return nil, err
	}
	user.Role = *role

	s.Events.Publish(ctx, events.TopicUsers, fmt.Sprint(user.ID), events.Event{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	l.Info().Uint("user_id", user.ID).Msg("user_registered")
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With().Str("svc", "auth.login").Str("email", email).Logger()

	p, err := s.Principals.Resolve(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			l.Warn().Int("status", 401).Str("reason", "unknown email").Msg("login_failed")
			return nil, domain.ErrInvalidCredentials
		}
		l.Error().Err(err).Int("status", 500).Msg("login_failed")
		return nil, err
	}

	if !s.checkPassword(p, password) {
		l.Warn().Int("status", 401).Str("reason", "wrong password").Msg("login_failed")
		return nil, domain.ErrInvalidCredentials
	}

	res, err := s.issue(ctx, p)
	if err != nil {
		l.Error().Err(err).Int("status", 500).Msg("login_failed")
		return nil, err
	}

	s.Events.Publish(ctx, events.TopicUsers, p.Username, events.Event{
		"type":        "user_logged_in",
		"user_id":     p.UserID,
		"email":       p.Username,
		"authorities": p.AuthorityStrings(),
	})
	return res, nil
}

func (s *AuthService) checkPassword(p *domain.Principal, password string) bool {
	if p.IsAdmin() {
		return subtle.ConstantTimeCompare([]byte(p.Password), []byte(password)) == 1
	}
	return pkg_hash.CheckPassword(p.Password, password)
}

// Refresh rotates the refresh token and re-resolves the principal, so role
// changes and deletions apply from the next refresh on.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With().Str("svc", "auth.refresh").Logger()

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Tokens.RefreshSecret)
	if err != nil {
		l.Warn().Err(err).Msg("refresh_failed")
		return nil, domain.ErrInvalidRefreshToken
	}

	p, err := s.Principals.Resolve(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			l.Warn().Str("subject", claims.Subject).Msg("refresh_failed")
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	res, next, err := s.sign(p)
	if err != nil {
		return nil, err
	}
	if err := s.Store.RotateRefreshToken(ctx, claims.ID, jwthelp.Sha256Hex(refreshToken), next); err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) {
			l.Warn().Str("jti", claims.ID).Msg("refresh_reused_or_expired")
			return nil, domain.ErrInvalidRefreshToken
		}
		l.Error().Err(err).Msg("refresh_failed")
		return nil, err
	}
	return res, nil
}

// LogOut revokes the refresh token. An empty token is a no-op.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.Store.RevokeRefreshByHash(ctx, jwthelp.Sha256Hex(refreshToken)); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("logout_failed")
		return err
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, p *domain.Principal) (*transport.LoginResult, error) {
	res, refresh, err := s.sign(p)
	if err != nil {
		return nil, err
	}
	if err := s.Store.AddRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return res, nil
}

func (s *AuthService) sign(p *domain.Principal) (*transport.LoginResult, *models.RefreshToken, error) {
	now := s.now()
	accessExp := now.Add(s.Tokens.AccessTTL)
	refreshExp := now.Add(s.Tokens.RefreshTTL)

	access, err := tokens.SignAccess(tokens.AccessClaims{
		UserID:      p.UserID,
		Authorities: p.AuthorityStrings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}, s.Tokens.AccessSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w", err)
	}

	jti := jwthelp.NewJTI()
	refresh, err := tokens.SignRefresh(tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	}, s.Tokens.RefreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &transport.LoginResult{
			AccessToken:  access,
			RefreshToken: refresh,
			AccessExp:    accessExp,
			RefreshExp:   refreshExp,
			Principal:    p,
		}, &models.RefreshToken{
			Subject:   p.Username,
			Token:     jwthelp.Sha256Hex(refresh),
			JTI:       jti,
			ExpiresAt: refreshExp.Unix(),
		}, nil
}
