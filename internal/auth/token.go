package auth

import (
	"fmt"
	"time"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.Expiration,
		now:    time.Now,
	}
}

// Issue signs a token for the profile and returns it with its expiry.
func (s *TokenService) Issue(p *models.Profile) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, issuer and expiry of a token.
// Any failure is reported as ErrUnauthenticated.
func (s *TokenService) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return claims, nil
}
