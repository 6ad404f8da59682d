package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"buddhist-lent/pledgeboard/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const revokedPrefix = "REVOKED_"

// IssuedToken is a validated bearer token.
type IssuedToken struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// TokenService issues and validates HS256 bearer tokens. Logged-out tokens
// are remembered in the cache until they would have expired anyway.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	cache     common.CacheInterface
}

func NewTokenService(secretKey []byte, ttl time.Duration, cache common.CacheInterface) *TokenService {
	return &TokenService{secretKey: secretKey, ttl: ttl, cache: cache}
}

func (s *TokenService) Issue(userID uint) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) Validate(ctx context.Context, tokenString string) (*IssuedToken, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	if _, revoked := s.cache.Get(ctx, revokedPrefix+claims.ID); revoked {
		return nil, ErrInvalidToken
	}

	return &IssuedToken{
		UserID:    uint(userID),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blocks a token for the rest of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, t *IssuedToken) {
	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		return
	}
	s.cache.Set(ctx, revokedPrefix+t.TokenID, []byte("1"), ttl)
}
