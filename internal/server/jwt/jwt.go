// Package jwt выпускает и проверяет токены сервера: access токены сессии
// и capability токены guardian ссылок. Подпись HS256.
package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const (
	issuer           = "wealthvault"
	audienceAPI      = "wealthvault-api"
	audienceGuardian = "wealthvault-guardian"
)

// ErrInvalidToken token is malformed, expired or signed with another key
var ErrInvalidToken = errors.New("invalid token")

// Service provides access and refresh token generation and validation
type Service struct {
	secret          []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// Claims represents access token claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	gojwt.RegisteredClaims
}

// NewService creates a new JWT service
// secret should be a cryptographically secure random string
func NewService(secret string, accessTokenTTL, refreshTokenTTL time.Duration) *Service {
	return &Service{
		secret:          []byte(secret),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// GenerateAccessToken creates a signed access token; returns the token and its TTL in seconds
func (s *Service) GenerateAccessToken(userID, username string) (string, int64, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			Audience:  gojwt.ClaimStrings{audienceAPI},
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}

	return token, int64(s.accessTokenTTL.Seconds()), nil
}

// GenerateRefreshToken creates a new random refresh token
func (s *Service) GenerateRefreshToken() (string, time.Time, error) {
	// Генерируем случайные 32 байта
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate random token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)
	return token, time.Now().Add(s.refreshTokenTTL), nil
}

// ValidateAccessToken validates and parses an access token
func (s *Service) ValidateAccessToken(token string) (*Claims, error) {
	claims := &Claims{}
	if err := parse(token, claims, s.secret, audienceAPI); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}

// ShareSigner signs guardian capability tokens.
// The token names the share (jti) and its owner (sub); revocation is checked against storage.
type ShareSigner struct {
	secret []byte
}

// ShareClaims claims of a guardian token
type ShareClaims struct {
	gojwt.RegisteredClaims
}

// NewShareSigner creates a signer with a secret distinct from the session secret
func NewShareSigner(secret string) *ShareSigner {
	return &ShareSigner{secret: []byte(secret)}
}

// Sign issues a token for share id of owner valid until expiresAt
func (s *ShareSigner) Sign(shareID, ownerID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := ShareClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        shareID,
			Issuer:    issuer,
			Subject:   ownerID,
			Audience:  gojwt.ClaimStrings{audienceGuardian},
			IssuedAt:  gojwt.NewNumericDate(issuedAt),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign share token: %w", err)
	}
	return token, nil
}

// Parse validates signature, audience and expiry of a guardian token
func (s *ShareSigner) Parse(token string) (*ShareClaims, error) {
	claims := &ShareClaims{}
	if err := parse(token, claims, s.secret, audienceGuardian); err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing share id", ErrInvalidToken)
	}
	return claims, nil
}

func parse(token string, claims gojwt.Claims, secret []byte, audience string) error {
	_, err := gojwt.ParseWithClaims(token, claims,
		func(*gojwt.Token) (any, error) { return secret, nil },
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithAudience(audience),
		gojwt.WithIssuer(issuer),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}
