package utils

import (
	"errors"
	"fmt"
	"time"

	"kasir-system/internal/database/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("Invalid Token")

type Claims struct {
	UserId int64       `json:"user_id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens scoped to one deployment
// through the audience claim.
type TokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	audience string
	now      func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, audience string) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		ttl:      ttl,
		audience: audience,
		now:      time.Now,
	}
}

func (t *TokenIssuer) GenerateToken(user models.User) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		UserId: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", user.ID),
			Audience:  jwt.ClaimStrings{t.audience},
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(t.secret)
	return s, claims, err
}

func (t *TokenIssuer) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyAudience(t.audience, true) {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTLLeft returns how long the token remains valid.
func (c *Claims) TTLLeft(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
