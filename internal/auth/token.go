// ABOUTME: JWT token verification and generation for API authentication
// ABOUTME: Uses HS256 signing with the secret from the gateway configuration

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
	ErrEmptySecret  = errors.New("empty signing secret")
)

// TokenVerifier defines the interface for token verification.
type TokenVerifier interface {
	Verify(tokenString string) (subject string, err error)
}

// JWTVerifier implements TokenVerifier using HS256 signed JWTs.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier with the given secret.
func NewJWTVerifier(secret []byte) (*JWTVerifier, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &JWTVerifier{secret: secret}, nil
}

// Verify validates the token and extracts the subject from the "sub" claim.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	return subject, nil
}

// GenerateToken creates an HS256 signed token for the given subject,
// expiring after ttl. Used by the CLI to mint client tokens.
func GenerateToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
