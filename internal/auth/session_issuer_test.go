package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/screenverse/backend/internal/users"
)

type stubDirectory struct {
	reconciled   users.User
	reconcileErr error
	byEmail      map[string]users.User
}

func (s *stubDirectory) Reconcile(ctx context.Context, assertion users.ExternalAssertion) (users.User, error) {
	if s.reconcileErr != nil {
		return users.User{}, s.reconcileErr
	}
	return s.reconciled, nil
}

func (s *stubDirectory) FindByEmail(ctx context.Context, email string) (users.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return users.User{}, fmt.Errorf("%w: email %q", users.ErrIdentityNotFound, email)
	}
	return user, nil
}

func TestStartSessionIssuesTokenPair(t *testing.T) {
	codec := testCodec(t, nil)
	user := testUser()
	issuer, err := NewSessionIssuer(&stubDirectory{reconciled: user}, codec)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	session, err := issuer.StartSession(context.Background(), users.ExternalAssertion{
		ProviderUserID: "p1",
		Email:          "a@x.com",
		AuthProvider:   "google",
	})
	if err != nil {
		t.Fatalf("expected session start to succeed: %v", err)
	}

	if session.UserID != user.ID || session.Email != user.Email {
		t.Fatalf("unexpected session profile: %+v", session)
	}
	if session.IsNewUser {
		t.Fatalf("expected isNewUser to be false in the unified flow")
	}

	accessClaims, ok := codec.Verify(session.AccessToken)
	if !ok || accessClaims.Subject != user.Email {
		t.Fatalf("expected valid access token for subject %q", user.Email)
	}
	refreshClaims, ok := codec.Verify(session.RefreshToken)
	if !ok || refreshClaims.TokenType != TokenTypeRefresh {
		t.Fatalf("expected valid refresh token with type claim")
	}
}

func TestStartSessionPropagatesReconcileFailure(t *testing.T) {
	codec := testCodec(t, nil)
	issuer, err := NewSessionIssuer(&stubDirectory{reconcileErr: users.ErrIdentityConflict}, codec)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	_, err = issuer.StartSession(context.Background(), users.ExternalAssertion{})
	if !errors.Is(err, users.ErrIdentityConflict) {
		t.Fatalf("expected identity conflict, got %v", err)
	}
}

func TestRenewRejectsAccessToken(t *testing.T) {
	codec := testCodec(t, nil)
	user := testUser()
	issuer, err := NewSessionIssuer(&stubDirectory{byEmail: map[string]users.User{user.Email: user}}, codec)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	accessToken, err := codec.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}

	// The access token's signature verifies, but it is the wrong kind.
	_, err = issuer.Renew(context.Background(), accessToken)
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected invalid credential for access token, got %v", err)
	}

	_, err = issuer.Renew(context.Background(), "garbage")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected invalid credential for malformed token, got %v", err)
	}
}

func TestRenewIssuesFreshPair(t *testing.T) {
	codec := testCodec(t, nil)
	user := testUser()
	issuer, err := NewSessionIssuer(&stubDirectory{byEmail: map[string]users.User{user.Email: user}}, codec)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	refreshToken, err := codec.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}

	session, err := issuer.Renew(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("expected renewal to succeed: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("unexpected renewed session user: %+v", session)
	}
	if _, ok := codec.Verify(session.AccessToken); !ok {
		t.Fatalf("expected fresh access token to verify")
	}

	// No revocation store: the presented refresh token remains usable.
	if _, err := issuer.Renew(context.Background(), refreshToken); err != nil {
		t.Fatalf("expected refresh token to remain valid after use: %v", err)
	}
}

func TestRenewFailsWhenUserDeleted(t *testing.T) {
	codec := testCodec(t, nil)
	user := testUser()
	issuer, err := NewSessionIssuer(&stubDirectory{byEmail: map[string]users.User{}}, codec)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	refreshToken, err := codec.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}

	_, err = issuer.Renew(context.Background(), refreshToken)
	if !errors.Is(err, users.ErrIdentityNotFound) {
		t.Fatalf("expected identity not found, got %v", err)
	}
}
