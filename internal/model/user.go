package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of staff roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleBarber  Role = "BARBER"
)

// Capability names an action guarded at the HTTP boundary.
type Capability string

const (
	CapManageCash     Capability = "cash:manage"
	CapManageCatalog  Capability = "catalog:manage"
	CapViewAllFinance Capability = "finance:view_all"
	CapRegisterSale   Capability = "sale:register"
	CapManageUsers    Capability = "users:manage"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageCash:     true,
		CapManageCatalog:  true,
		CapViewAllFinance: true,
		CapRegisterSale:   true,
		CapManageUsers:    true,
	},
	RoleManager: {
		CapManageCash:     true,
		CapManageCatalog:  true,
		CapViewAllFinance: true,
		CapRegisterSale:   true,
	},
	RoleBarber: {
		CapRegisterSale: true,
	},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// IsPrivileged is true for roles that may act on other barbers' data.
func (r Role) IsPrivileged() bool {
	return r.Can(CapViewAllFinance)
}

// User is a staff member able to log in.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"type:varchar(20);not null"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
