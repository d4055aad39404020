package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/screenverse/backend/internal/users"
)

const (
	defaultAccessTokenTTL  = 2 * time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour

	// TokenTypeRefresh is the type claim carried by refresh tokens. Access
	// tokens carry no type claim.
	TokenTypeRefresh = "refresh"
)

var (
	errMissingSigningSecret = errors.New("auth: signing secret must be provided")
	errMissingIssuer        = errors.New("auth: issuer must be provided")
	errMissingSubject       = errors.New("auth: subject email must be provided")
)

// TokenClaims is the claim set embedded in ScreenVerse bearer tokens.
type TokenClaims struct {
	UserID         int64  `json:"userId"`
	ProviderUserID string `json:"providerUserId,omitempty"`
	TokenType      string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodecConfig configures the bearer token codec.
type TokenCodecConfig struct {
	SigningSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Clock         func() time.Time
}

// TokenCodec creates and verifies the signed, self-contained bearer tokens
// that stand in for server-side sessions.
type TokenCodec struct {
	signingSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         func() time.Time
}

// NewTokenCodec constructs a TokenCodec with sane defaults.
func NewTokenCodec(cfg TokenCodecConfig) (*TokenCodec, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, errMissingSigningSecret
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		return nil, errMissingIssuer
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TokenCodec{
		signingSecret: append([]byte(nil), cfg.SigningSecret...),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		clock:         clock,
	}, nil
}

// IssueAccessToken signs a short-lived token with subject set to the user's
// email and the local user id embedded as an informational claim.
func (c *TokenCodec) IssueAccessToken(user users.User) (string, error) {
	return c.sign(user, TokenClaims{
		UserID:         user.ID,
		ProviderUserID: user.ProviderUserID,
	}, c.accessTTL)
}

// IssueRefreshToken signs a long-lived token marked with the refresh type claim.
func (c *TokenCodec) IssueRefreshToken(user users.User) (string, error) {
	return c.sign(user, TokenClaims{
		UserID:    user.ID,
		TokenType: TokenTypeRefresh,
	}, c.refreshTTL)
}

func (c *TokenCodec) sign(user users.User, claims TokenClaims, ttl time.Duration) (string, error) {
	if strings.TrimSpace(user.Email) == "" {
		return "", errMissingSubject
	}
	now := c.clock().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   user.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.signingSecret)
}

// Verify checks the token's signature, issuer and expiry. Every failure mode
// collapses to ok=false so callers cannot branch on the cause; callers that
// care about refresh-vs-access inspect TokenType on the returned claims.
func (c *TokenCodec) Verify(tokenString string) (TokenClaims, bool) {
	trimmed := strings.TrimSpace(tokenString)
	if trimmed == "" {
		return TokenClaims{}, false
	}
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(
		trimmed,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
			}
			return c.signingSecret, nil
		},
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.clock),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return TokenClaims{}, false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return TokenClaims{}, false
	}
	return *claims, true
}
