package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures, and kind mismatches.
	ErrTokenInvalid = errors.New("jwt: token invalid")
	// ErrTokenExpired indicates the token was well formed but past its expiry.
	ErrTokenExpired = errors.New("jwt: token expired")
)

// Claims is the claim set carried by both token kinds. TokenType identifies
// the kind so a refresh token can never be presented where an access token is
// expected.
type Claims struct {
	TokenType string `json:"type"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HMAC-SHA256 signed tokens with a shared secret.
type TokenCodec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenCodecOption customizes a TokenCodec.
type TokenCodecOption func(*TokenCodec)

// WithTokenClock overrides the codec clock.
func WithTokenClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec builds a codec for the given secret and lifetimes.
func NewTokenCodec(secret, issuer string, accessTTL, refreshTTL time.Duration, opts ...TokenCodecOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt: signing secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("jwt: token lifetimes must be positive")
	}

	codec := &TokenCodec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(codec)
	}

	return codec, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

// IssueAccessToken signs a short-lived access token for the account.
func (c *TokenCodec) IssueAccessToken(accountID, email string) (string, error) {
	return c.issue(TokenKindAccess, accountID, email, c.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the account.
func (c *TokenCodec) IssueRefreshToken(accountID, email string) (string, error) {
	return c.issue(TokenKindRefresh, accountID, email, c.refreshTTL)
}

func (c *TokenCodec) issue(kind TokenKind, accountID, email string, ttl time.Duration) (string, error) {
	if accountID == "" {
		return "", errors.New("jwt: account id is required")
	}

	now := c.now().UTC()
	claims := Claims{
		TokenType: string(kind),
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign %s token: %w", kind, err)
	}

	return signed, nil
}

// Verify parses the token, checks signature and expiry, and requires the
// embedded kind to match the expected one.
func (c *TokenCodec) Verify(token string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != string(kind) {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrTokenInvalid, claims.TokenType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims, nil
}
