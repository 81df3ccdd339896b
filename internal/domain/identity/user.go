package identity

import (
	"github.com/visaflow/backend/internal/domain/shared"
)

// Role is a user's role in the consultancy. Authorization itself is
// enforced upstream; this core only reads roles for channel routing.
type Role string

const (
	RoleCounsellor Role = "counsellor"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// IsValid returns true for a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleCounsellor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is a staff member. Account lifecycle (signup, credentials,
// sessions) is owned by the identity service; the payment core only
// resolves display identities from it.
type User struct {
	shared.BaseEntity
	FullName string `gorm:"type:varchar(200);not null"`
	Email    string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Role     Role   `gorm:"type:varchar(20);not null;default:'counsellor'"`
}

// TableName returns the table name for GORM
func (User) TableName() string { return "users" }
