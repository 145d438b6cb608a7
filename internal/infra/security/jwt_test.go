package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, opts ...TokenCodecOption) *TokenCodec {
	t.Helper()

	codec, err := NewTokenCodec("test-secret-at-least-32-bytes-long", "accounts-service", 30*time.Minute, 168*time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueAccessToken("acct-123", "user@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	claims, err := codec.Verify(token, TokenKindAccess)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if claims.Subject != "acct-123" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
	if claims.TokenType != string(TokenKindAccess) {
		t.Fatalf("unexpected type claim: %s", claims.TokenType)
	}
}

func TestTokenCodecKindMismatch(t *testing.T) {
	codec := newTestCodec(t)

	refresh, err := codec.IssueRefreshToken("acct-123", "user@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}

	if _, err := codec.Verify(refresh, TokenKindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for refresh token presented as access, got %v", err)
	}

	access, err := codec.IssueAccessToken("acct-123", "user@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if _, err := codec.Verify(access, TokenKindRefresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token presented as refresh, got %v", err)
	}
}

func TestTokenCodecExpiry(t *testing.T) {
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, WithTokenClock(func() time.Time { return current }))

	token, err := codec.IssueAccessToken("acct-123", "user@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if _, err := codec.Verify(token, TokenKindAccess); err != nil {
		t.Fatalf("token should be valid before expiry: %v", err)
	}

	current = current.Add(31 * time.Minute)
	if _, err := codec.Verify(token, TokenKindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodecTamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueAccessToken("acct-123", "user@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	if _, err := codec.Verify(tampered, TokenKindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered signature, got %v", err)
	}
}

func TestNewTokenCodecValidation(t *testing.T) {
	if _, err := NewTokenCodec("", "accounts-service", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenCodec("secret", "accounts-service", 0, time.Hour); err == nil {
		t.Fatal("expected error for non-positive access TTL")
	}
}
