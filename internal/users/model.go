package users

import (
	"strings"
	"time"
)

// User is the locally-owned account record anchored to an external identity
// provider. ProviderUserID and Email are each globally unique; AuthProvider is
// set once at creation and never re-validated afterward.
type User struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProviderUserID string    `gorm:"column:provider_user_id;size:190;not null;uniqueIndex"`
	Email          string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	FirstName      string    `gorm:"column:first_name;size:190"`
	LastName       string    `gorm:"column:last_name;size:190"`
	AuthProvider   string    `gorm:"column:auth_provider;size:32;not null"`
	LastSeenAt     time.Time `gorm:"column:last_seen_at"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}

// ExternalAssertion carries the identity fields asserted by the external
// provider on sign-in. FirstName and LastName are optional.
type ExternalAssertion struct {
	ProviderUserID string
	Email          string
	FirstName      string
	LastName       string
	AuthProvider   string
}

func normalize(value string) string {
	return strings.TrimSpace(value)
}
