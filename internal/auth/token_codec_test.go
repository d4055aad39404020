package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/screenverse/backend/internal/users"
)

func testUser() users.User {
	return users.User{
		ID:             1,
		ProviderUserID: "p1",
		Email:          "a@x.com",
		FirstName:      "Ann",
		AuthProvider:   "google",
	}
}

func testCodec(t *testing.T, clock func() time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenCodecConfig{
		SigningSecret: []byte("super-secret"),
		Issuer:        "screenverse-api",
		AccessTTL:     2 * time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return codec
}

func TestNewTokenCodecRequiresSecretAndIssuer(t *testing.T) {
	if _, err := NewTokenCodec(TokenCodecConfig{Issuer: "screenverse-api"}); err == nil {
		t.Fatalf("expected constructor error for missing secret")
	}
	if _, err := NewTokenCodec(TokenCodecConfig{SigningSecret: []byte("s"), Issuer: " "}); err == nil {
		t.Fatalf("expected constructor error for missing issuer")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	codec := testCodec(t, nil)

	tokenString, err := codec.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}

	claims, ok := codec.Verify(tokenString)
	if !ok {
		t.Fatalf("expected issued token to verify")
	}
	if claims.Subject != "a@x.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.UserID != 1 {
		t.Fatalf("unexpected user id claim %d", claims.UserID)
	}
	if claims.ProviderUserID != "p1" {
		t.Fatalf("unexpected provider user id claim %q", claims.ProviderUserID)
	}
	if claims.TokenType != "" {
		t.Fatalf("access token must not carry a type claim, got %q", claims.TokenType)
	}
}

func TestRefreshTokenCarriesTypeClaim(t *testing.T) {
	codec := testCodec(t, nil)

	tokenString, err := codec.IssueRefreshToken(testUser())
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}

	claims, ok := codec.Verify(tokenString)
	if !ok {
		t.Fatalf("expected issued token to verify")
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Fatalf("expected refresh type claim, got %q", claims.TokenType)
	}
	if claims.Subject != "a@x.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	codec := testCodec(t, func() time.Time { return issuedAt })

	tokenString, err := codec.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}

	late := testCodec(t, func() time.Time { return issuedAt.Add(2*time.Hour + time.Minute) })
	if _, ok := late.Verify(tokenString); ok {
		t.Fatalf("expected verification to fail after expiry")
	}

	early := testCodec(t, func() time.Time { return issuedAt.Add(time.Hour) })
	if _, ok := early.Verify(tokenString); !ok {
		t.Fatalf("expected verification to succeed before expiry")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	codec := testCodec(t, nil)

	tokenString, err := codec.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}

	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		t.Fatalf("expected three token segments, got %d", len(segments))
	}
	signature := []byte(segments[2])
	if signature[0] == 'A' {
		signature[0] = 'B'
	} else {
		signature[0] = 'A'
	}
	tampered := segments[0] + "." + segments[1] + "." + string(signature)

	if _, ok := codec.Verify(tampered); ok {
		t.Fatalf("expected verification to fail for tampered signature")
	}
}

func TestVerifyRejectsWrongIssuerAndSecret(t *testing.T) {
	codec := testCodec(t, nil)

	otherIssuer, err := NewTokenCodec(TokenCodecConfig{
		SigningSecret: []byte("super-secret"),
		Issuer:        "other-service",
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	foreign, err := otherIssuer.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}
	if _, ok := codec.Verify(foreign); ok {
		t.Fatalf("expected verification to fail for wrong issuer")
	}

	otherSecret, err := NewTokenCodec(TokenCodecConfig{
		SigningSecret: []byte("different-secret"),
		Issuer:        "screenverse-api",
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	forged, err := otherSecret.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}
	if _, ok := codec.Verify(forged); ok {
		t.Fatalf("expected verification to fail for wrong secret")
	}

	if _, ok := codec.Verify("not.a.token"); ok {
		t.Fatalf("expected verification to fail for malformed token")
	}
	if _, ok := codec.Verify(""); ok {
		t.Fatalf("expected verification to fail for empty token")
	}
}
