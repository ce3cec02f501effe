package security

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const TOKEN_KEY = "Authorization"

// TokenClaims is the identity attached to every authenticated request or
// websocket connection. Issuing tokens is an external concern, the realtime
// tier only verifies and consumes them.
type TokenClaims struct {
	Appid      string `json:"aid"`
	User       string `json:"u"`
	ExpireTime int64  `json:"exp"`
	NotBefore  int64  `json:"nbf"`
}

func NewTokenClaims(appid, userID string, expireTime int64) TokenClaims {
	return TokenClaims{
		Appid:      appid,
		User:       userID,
		ExpireTime: expireTime,
		NotBefore:  time.Now().Unix() - 1,
	}
}

func (c TokenClaims) Valid() error {
	now := time.Now().Unix()
	if c.User == "" {
		return fmt.Errorf("token has no user")
	}
	if c.ExpireTime != 0 && c.ExpireTime < now {
		return fmt.Errorf("token expired")
	}
	if c.NotBefore > now {
		return fmt.Errorf("token not effective yet")
	}
	return nil
}

func GenJWTToken(claims TokenClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func VerifyJWTToken(tokenValue, secret string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
