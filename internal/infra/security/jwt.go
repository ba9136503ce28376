package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/infra/config"
)

const (
	// TokenTypeAccess marks short-lived tokens accepted by API middleware.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens accepted only by the refresh flow.
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken indicates the token failed signature or claim validation.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrWrongTokenType indicates a valid token presented to the wrong surface.
	ErrWrongTokenType = errors.New("jwt: wrong token type")
)

// Claims carries the account identity inside issued tokens.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HMAC tokens for authenticated sessions.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager constructs a TokenManager from JWT settings.
func NewTokenManager(cfg config.JWTSettings) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: signing secret is not configured")
	}

	return &TokenManager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// IssueAccessToken mints a short-lived access token for the account.
func (m *TokenManager) IssueAccessToken(account domain.Account) (string, time.Time, error) {
	return m.issue(account, TokenTypeAccess, m.accessTTL)
}

// IssueRefreshToken mints a long-lived refresh token for the account.
func (m *TokenManager) IssueRefreshToken(account domain.Account) (string, time.Time, error) {
	return m.issue(account, TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(account domain.Account, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Email:     account.Email,
		Role:      string(account.Role),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign %s token: %w", tokenType, err)
	}

	return signed, expiresAt, nil
}

// Parse validates a signed token and returns its claims. The expected token
// type must match the claim embedded at issuance.
func (m *TokenManager) Parse(signed, expectedType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongTokenType, claims.TokenType, expectedType)
	}

	return claims, nil
}
