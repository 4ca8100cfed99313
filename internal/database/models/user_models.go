package models

import "time"

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleKasir      Role = "kasir"
	RoleChef       Role = "chef"
	RoleOwner      Role = "owner"
	RoleApoteker   Role = "apoteker"
)

// Closed role sets per deployment.
var (
	CafeRoles  = []Role{RoleSuperadmin, RoleAdmin, RoleKasir, RoleChef, RoleOwner}
	FarmaRoles = []Role{RoleSuperadmin, RoleApoteker, RoleKasir}
)

func HasRole(set []Role, role Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	CafeID    *int64     `gorm:"index" json:"cafe_id,omitempty"`
	Cafe      *Cafe      `gorm:"foreignKey:CafeID;constraint:OnDelete:SET NULL" json:"cafe,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Cafe is outlet reference data for the cafe deployment.
type Cafe struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"type:varchar(32)" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
