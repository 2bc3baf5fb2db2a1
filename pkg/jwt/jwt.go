package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Cookies builds the session cookies. Secure should be off only for plain-http local runs.
type Cookies struct {
	Path   string
	Domain string
	Secure bool
}

func (c Cookies) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

// Session returns an HttpOnly cookie holding value until exp.
func (c Cookies) Session(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.path(),
		Domain:   c.Domain,
		Expires:  exp,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Expire returns a cookie that makes the browser drop name.
func (c Cookies) Expire(name string) *http.Cookie {
	ck := c.Session(name, "", time.Unix(0, 0))
	ck.MaxAge = -1
	return ck
}

// Sha256Hex is how refresh tokens are stored.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func NewJTI() string { return uuid.NewString() }
