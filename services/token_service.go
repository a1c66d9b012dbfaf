// File: /services/token_service.go
package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"vanlife-api/config"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
	KindReset   TokenKind = "reset"
	KindAdmin   TokenKind = "admin"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenInvalid   = errors.New("token signature is invalid")
	ErrWrongTokenKind = errors.New("token kind not accepted")
)

type Claims struct {
	Email string    `json:"email"`
	Kind  TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// ResetGrant is the identity proven by a valid reset token.
type ResetGrant struct {
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

type TokenService struct {
	secret     []byte
	resetKey   []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	adminTTL   time.Duration
	now        func() time.Time
}

func NewTokenService(cfg *config.Config) *TokenService {
	mac := hmac.New(sha256.New, []byte(cfg.SecretKey))
	mac.Write([]byte(cfg.Salt))

	return &TokenService{
		secret:     []byte(cfg.SecretKey),
		resetKey:   mac.Sum(nil),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		resetTTL:   cfg.ResetTokenTTL,
		adminTTL:   cfg.AdminSessionTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) IssueAccess(email string) (string, error) {
	return s.issue(email, KindAccess, s.accessTTL, s.secret)
}

func (s *TokenService) IssueRefresh(email string) (string, error) {
	return s.issue(email, KindRefresh, s.refreshTTL, s.secret)
}

func (s *TokenService) IssueAdmin(username string) (string, error) {
	return s.issue(username, KindAdmin, s.adminTTL, s.secret)
}

// IssueReset signs a reset token carrying only its issue time; its age is
// checked against the reset window on verification.
func (s *TokenService) IssueReset(email string) (string, error) {
	return s.issue(email, KindReset, 0, s.resetKey)
}

func (s *TokenService) issue(subject string, kind TokenKind, ttl time.Duration, key []byte) (string, error) {
	now := s.now()
	claims := Claims{
		Email: subject,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Parse validates a session token and checks that it is of the wanted kind.
func (s *TokenService) Parse(raw string, kind TokenKind) (*Claims, error) {
	claims, err := s.parse(raw, s.secret)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

func (s *TokenService) parse(raw string, key []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

// VerifyReset returns the grant of a reset token still inside its window.
// Any failure yields ok == false.
func (s *TokenService) VerifyReset(raw string) (ResetGrant, bool) {
	if raw == "" {
		return ResetGrant{}, false
	}
	claims, err := s.parse(raw, s.resetKey)
	if err != nil || claims.Kind != KindReset || claims.IssuedAt == nil || claims.Email == "" {
		return ResetGrant{}, false
	}
	issued := claims.IssuedAt.Time
	if s.now().Sub(issued) > s.resetTTL {
		return ResetGrant{}, false
	}
	return ResetGrant{
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: issued.Add(s.resetTTL),
	}, true
}
