package devserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL 令牌有效期
const tokenTTL = 24 * time.Hour

// Claims 自定义 JWT claims
type Claims struct {
	Email string `json:"email"`
	Rol   string `json:"rol"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发与校验 HS256 令牌
type TokenIssuer struct {
	secretKey []byte
	now       func() time.Time
}

// NewTokenIssuer 创建令牌签发器
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secretKey: []byte(secret), now: time.Now}
}

// GenerateToken 为用户签发令牌
func (t *TokenIssuer) GenerateToken(u User) (string, error) {
	now := t.now()
	claims := Claims{
		Email: u.Email,
		Rol:   u.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.secretKey)
}

// ParseToken 验证并返回 claims
func (t *TokenIssuer) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(*jwt.Token) (interface{}, error) { return t.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
