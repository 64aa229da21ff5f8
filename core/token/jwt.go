// Package token issues and verifies the signed identity tokens handed to clients after registration or login.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrInvalidToken is returned for malformed, tampered, expired or foreign tokens.
var ErrInvalidToken = errors.New("invalid token")

var nowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
// The user ID travels in the subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager signs tokens with a symmetric HMAC key.
type Manager struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

func NewManager(secretKey, issuer string, ttl time.Duration) *Manager {
	return &Manager{secretKey: []byte(secretKey), issuer: issuer, ttl: ttl}
}

// Issue returns a signed token for userID, valid for the configured ttl.
func (m *Manager) Issue(userID string) (string, error) {
	now := nowFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	ss, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify checks the signature and expiry of token and returns the user ID it carries.
func (m *Manager) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("wrong signing method %v", t.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(nowFunc),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
