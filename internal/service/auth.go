package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/pingme/pingme-server/internal/domain"
)

var tracer = otel.Tracer("auth")

// Claims is the payload of an issued token. UserID and Email mirror
// what the login endpoint returns alongside the token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	secret []byte
	expiry time.Duration

	// validated tokens are memoized until they expire; validation is
	// pure so the cache can never go stale before expiry
	memo *cache.Cache
}

func NewAuthService(secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		expiry: expiry,
		memo:   cache.New(5*time.Minute, 10*time.Minute),
	}
}

type AuthResult struct {
	UserID string
	Email  string
}

// IssueToken signs an HS256 token for the user.
func (s *AuthService) IssueToken(ctx context.Context, user domain.User) (string, error) {
	_, span := tracer.Start(ctx, "Auth.Service.IssueToken")
	defer span.End()

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pingme",
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "token signing failed"))
		return "", err
	}
	return signed, nil
}

// ValidateToken checks signature and expiry and returns the embedded
// identity. Results are memoized with a TTL bounded by token expiry.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.ValidateToken")
	defer span.End()

	if cached, ok := s.memo.Get(tokenString); ok {
		result := cached.(AuthResult)
		return &result, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		err := fmt.Errorf("invalid token")
		span.RecordError(err)
		return nil, err
	}

	result := AuthResult{UserID: claims.UserID, Email: claims.Email}

	ttl := s.expiry
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 {
		s.memo.Set(tokenString, result, ttl)
	}

	return &result, nil
}
