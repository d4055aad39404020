package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/screenverse/backend/internal/users"
)

// ErrInvalidCredential indicates a presented token failed verification or is
// of the wrong kind for the flow it was presented to.
var ErrInvalidCredential = errors.New("auth: invalid credential")

// UserDirectory is the slice of the user service the session issuer needs.
type UserDirectory interface {
	Reconcile(ctx context.Context, assertion users.ExternalAssertion) (users.User, error)
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Session is the credential pair plus profile summary handed to clients.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Email        string
	FirstName    string
	LastName     string
	IsNewUser    bool
}

// SessionIssuer turns a reconciled identity or a valid refresh token into a
// fresh token pair. There is no revocation store: a refresh token stays valid
// until its own expiry even after it has been used.
type SessionIssuer struct {
	directory UserDirectory
	codec     *TokenCodec
}

// NewSessionIssuer constructs a SessionIssuer.
func NewSessionIssuer(directory UserDirectory, codec *TokenCodec) (*SessionIssuer, error) {
	if directory == nil {
		return nil, fmt.Errorf("auth: user directory required")
	}
	if codec == nil {
		return nil, fmt.Errorf("auth: token codec required")
	}
	return &SessionIssuer{directory: directory, codec: codec}, nil
}

// StartSession is the unified sign-up/sign-in entry point: the identity
// provider is the source of truth for whether the identity exists, so this is
// an idempotent upsert followed by token issuance, never a gatekeeper.
func (s *SessionIssuer) StartSession(ctx context.Context, assertion users.ExternalAssertion) (Session, error) {
	user, err := s.directory.Reconcile(ctx, assertion)
	if err != nil {
		return Session{}, err
	}
	return s.issue(user)
}

// Renew exchanges a valid refresh token for a fresh token pair. An access
// token presented here is rejected even though its signature verifies.
func (s *SessionIssuer) Renew(ctx context.Context, refreshToken string) (Session, error) {
	claims, ok := s.codec.Verify(refreshToken)
	if !ok || claims.TokenType != TokenTypeRefresh {
		return Session{}, ErrInvalidCredential
	}
	user, err := s.directory.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return Session{}, err
	}
	return s.issue(user)
}

func (s *SessionIssuer) issue(user users.User) (Session, error) {
	accessToken, err := s.codec.IssueAccessToken(user)
	if err != nil {
		return Session{}, err
	}
	refreshToken, err := s.codec.IssueRefreshToken(user)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		// Always false in the unified flow; first-time creation is not
		// reported to clients today.
		IsNewUser: false,
	}, nil
}
