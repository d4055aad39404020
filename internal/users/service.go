package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrInvalidAssertion indicates the external assertion is missing a required field.
	ErrInvalidAssertion = errors.New("users: invalid external assertion")
	// ErrIdentityConflict indicates the asserted keys resolve to two distinct accounts.
	ErrIdentityConflict = errors.New("users: identity conflict")
	// ErrIdentityNotFound indicates no account backs the referenced identity.
	ErrIdentityNotFound = errors.New("users: identity not found")
)

// ServiceConfig describes the dependencies required for account reconciliation.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
}

// Service owns the user table: reconciliation of external identity assertions
// plus the administrative account operations.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs the user service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: cfg.Database, now: clock}, nil
}

// Reconcile maps an external identity assertion onto a local account,
// creating it on first sight and opportunistically syncing mutable profile
// fields afterwards. Provider user id, email and auth provider are set once
// at creation and never overwritten here. The lookup prefers the provider
// user id so a returning user resolves to the same record even if their
// email changed upstream.
func (s *Service) Reconcile(ctx context.Context, assertion ExternalAssertion) (User, error) {
	providerUserID := normalize(assertion.ProviderUserID)
	email := normalize(assertion.Email)
	provider := normalize(assertion.AuthProvider)
	if providerUserID == "" || email == "" || provider == "" {
		return User{}, fmt.Errorf("%w: provider user id, email and auth provider are required", ErrInvalidAssertion)
	}

	var resolved User
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byProvider, foundProvider, err := lookup(tx, "provider_user_id = ?", providerUserID)
		if err != nil {
			return err
		}
		byEmail, foundEmail, err := lookup(tx, "email = ?", email)
		if err != nil {
			return err
		}
		if foundProvider && foundEmail && byProvider.ID != byEmail.ID {
			return fmt.Errorf("%w: provider user id %q and email %q belong to different accounts",
				ErrIdentityConflict, providerUserID, email)
		}

		existing := byProvider
		found := foundProvider
		if !found {
			existing = byEmail
			found = foundEmail
		}

		if !found {
			created := User{
				ProviderUserID: providerUserID,
				Email:          email,
				FirstName:      normalize(assertion.FirstName),
				LastName:       normalize(assertion.LastName),
				AuthProvider:   provider,
				LastSeenAt:     s.now(),
			}
			err := tx.Create(&created).Error
			if err == nil {
				resolved = created
				return nil
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			// A concurrent reconciliation won the insert; retry as update.
			existing, found, err = lookup(tx, "provider_user_id = ? OR email = ?", providerUserID, email)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: duplicate insert but no row found", ErrIdentityNotFound)
			}
		}

		updates := map[string]interface{}{"last_seen_at": s.now()}
		if first := normalize(assertion.FirstName); first != "" && first != existing.FirstName {
			existing.FirstName = first
			updates["first_name"] = first
		}
		if last := normalize(assertion.LastName); last != "" && last != existing.LastName {
			existing.LastName = last
			updates["last_name"] = last
		}
		if err := tx.Model(&User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}
		resolved = existing
		return nil
	})
	if txErr != nil {
		return User{}, txErr
	}
	return resolved, nil
}

// Exists reports whether an account backs either asserted key. The provider
// user id is checked first, then the email. It never creates anything.
func (s *Service) Exists(ctx context.Context, email, providerUserID string) (bool, string, error) {
	if id := normalize(providerUserID); id != "" {
		_, found, err := lookup(s.db.WithContext(ctx), "provider_user_id = ?", id)
		if err != nil {
			return false, "", err
		}
		if found {
			return true, "User found by provider ID", nil
		}
	}
	if address := normalize(email); address != "" {
		_, found, err := lookup(s.db.WithContext(ctx), "email = ?", address)
		if err != nil {
			return false, "", err
		}
		if found {
			return true, "User found by email", nil
		}
	}
	return false, "User not found", nil
}

// FindByEmail resolves an account by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	user, found, err := lookup(s.db.WithContext(ctx), "email = ?", normalize(email))
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, fmt.Errorf("%w: email %q", ErrIdentityNotFound, email)
	}
	return user, nil
}

// FindByID resolves an account by its local surrogate id.
func (s *Service) FindByID(ctx context.Context, id int64) (User, error) {
	user, found, err := lookup(s.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, fmt.Errorf("%w: id %d", ErrIdentityNotFound, id)
	}
	return user, nil
}

// List returns every account ordered by id.
func (s *Service) List(ctx context.Context) ([]User, error) {
	var all []User
	if err := s.db.WithContext(ctx).Order("id").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// UpdateProfile overwrites an account's profile fields after checking that
// the new email and provider user id do not collide with another account.
func (s *Service) UpdateProfile(ctx context.Context, id int64, assertion ExternalAssertion) (User, error) {
	var updated User
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, found, err := lookup(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: id %d", ErrIdentityNotFound, id)
		}
		if other, hit, err := lookup(tx, "email = ? AND id <> ?", normalize(assertion.Email), id); err != nil {
			return err
		} else if hit {
			return fmt.Errorf("%w: email %q already in use by account %d", ErrIdentityConflict, assertion.Email, other.ID)
		}
		if other, hit, err := lookup(tx, "provider_user_id = ? AND id <> ?", normalize(assertion.ProviderUserID), id); err != nil {
			return err
		} else if hit {
			return fmt.Errorf("%w: provider user id %q already in use by account %d", ErrIdentityConflict, assertion.ProviderUserID, other.ID)
		}

		existing.ProviderUserID = normalize(assertion.ProviderUserID)
		existing.Email = normalize(assertion.Email)
		existing.FirstName = normalize(assertion.FirstName)
		existing.LastName = normalize(assertion.LastName)
		existing.AuthProvider = normalize(assertion.AuthProvider)
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if txErr != nil {
		return User{}, txErr
	}
	return updated, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrIdentityNotFound, id)
	}
	return nil
}

func lookup(tx *gorm.DB, query string, args ...interface{}) (User, bool, error) {
	var user User
	err := tx.Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}
