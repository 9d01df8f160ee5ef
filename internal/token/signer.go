// Package token wraps JWT issuance and verification. Each token kind is
// signed with its own secret and lifetime; the signer does not interpret
// claim semantics beyond signature and expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Kind selects the signing secret and lifetime for a token.
type Kind int

const (
	KindAccess Kind = iota
	KindRefresh
	KindReset
)

// TypePasswordReset is the discriminator claim value carried by reset tokens.
const TypePasswordReset = "password-reset"

// Claims is the signed claim set carried by every token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Signer mints and verifies tokens for the three configured kinds.
type Signer struct {
	cfg config.JWTConfig
}

func NewSigner(cfg config.JWTConfig) (*Signer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" || cfg.ResetSecret == "" {
		return nil, fmt.Errorf("all three token secrets must be configured")
	}
	return &Signer{cfg: cfg}, nil
}

// Sign mints a token of the given kind for the subject account.
func (s *Signer) Sign(userID, email string, kind Kind) (string, error) {
	secret, ttl := s.secretAndTTL(kind)

	now := time.Now().UTC()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}
	if kind == KindReset {
		claims.Type = TypePasswordReset
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token against the secret of the given kind and returns its
// claims. Expiry and bad signatures map to distinguishable sentinel errors.
func (s *Signer) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret, _ := s.secretAndTTL(kind)

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (s *Signer) secretAndTTL(kind Kind) (string, time.Duration) {
	switch kind {
	case KindRefresh:
		return s.cfg.RefreshSecret, s.cfg.RefreshTTL
	case KindReset:
		return s.cfg.ResetSecret, s.cfg.ResetTTL
	default:
		return s.cfg.AccessSecret, s.cfg.AccessTTL
	}
}
