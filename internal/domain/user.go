package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleImporter Role = "IMPORTER"
	RoleSupplier Role = "SUPPLIER"
)

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleImporter, RoleSupplier:
		return Role(s), true
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

// Area is a guarded section of the API surface.
type Area string

const (
	AreaAdmin    Area = "admin"
	AreaImporter Area = "importer"
	AreaSupplier Area = "supplier"
)

// CanAccess reports whether a role may enter an area.
// ADMIN is a super-role: it may enter every area.
func (r Role) CanAccess(area Area) bool {
	if r == RoleAdmin {
		return true
	}
	switch area {
	case AreaImporter:
		return r == RoleImporter
	case AreaSupplier:
		return r == RoleSupplier
	}
	return false
}

// User represents an account on the platform.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"pass_hash"`
	Role         Role      `json:"role" db:"role"`
	CompanyName  *string   `json:"companyName" db:"company_name"`
	Country      *string   `json:"country" db:"country"`
	Address      *string   `json:"address" db:"address"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
