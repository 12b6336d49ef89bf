package accounts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

// DefaultTokenMaxAge is how long an application link stays valid.
const DefaultTokenMaxAge = 7 * 24 * time.Hour

// ErrInvalidToken covers every way a capability token can fail. Callers
// cannot tell a missing token from an expired, forged or orphaned one.
var ErrInvalidToken = errors.New("invalid or expired application key")

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenSigner issues and checks stateless application keys. The key embeds
// the owner's email and issue time and is HMAC signed with the server secret.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the signer's time source.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	return &TokenSigner{secret: s.secret, now: now}
}

// Generate returns a signed key for the user.
func (s *TokenSigner) Generate(user models.User) (string, error) {
	claims := tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Email checks the key's signature and age and returns the embedded email.
func (s *TokenSigner) Email(token string, maxAge time.Duration) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	if maxAge <= 0 {
		maxAge = DefaultTokenMaxAge
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		slog.Debug("application key rejected", slog.Any("error", err))
		return "", ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.Email == "" {
		return "", ErrInvalidToken
	}
	if s.now().Sub(claims.IssuedAt.Time) > maxAge {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

// Verify resolves a key to the user that owns it.
func (s *TokenSigner) Verify(ctx context.Context, db *gorm.DB, token string, maxAge time.Duration) (*models.User, error) {
	email, err := s.Email(token, maxAge)
	if err != nil {
		return nil, err
	}
	user, ok := storage.GetUserByEmail(ctx, db, email)
	if !ok {
		return nil, ErrInvalidToken
	}
	return &user, nil
}
