package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

const refreshType = "refresh"

func SignRefresh(claims RefreshClaims, secret []byte) (string, error) {
	claims.Type = refreshType
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func RefreshClaimsFromToken(tokenStr string, refreshSecret []byte) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return refreshSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Type != refreshType || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}
