package user

import (
	"strings"
	"time"
)

// Account roles.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User is the users table GORM model.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:128" json:"email"`
	Phone        string    `gorm:"size:32" json:"phone"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Roles        string    `gorm:"size:256;not null" json:"-"` // comma-joined, e.g. "buyer,seller"
	Banned       bool      `gorm:"not null;default:false" json:"banned"`
	BanReason    string    `gorm:"size:255" json:"ban_reason,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RolesSlice splits the comma-joined roles column.
func (u User) RolesSlice() []string {
	if strings.TrimSpace(u.Roles) == "" {
		return nil
	}
	parts := strings.Split(u.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// HasRole reports whether the user carries role.
func (u User) HasRole(role string) bool {
	role = strings.TrimSpace(strings.ToLower(role))
	for _, r := range u.RolesSlice() {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

// RolesJoin joins roles into the column format, dropping blanks.
func RolesJoin(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return strings.Join(out, ",")
}

// AddRole returns the roles column with role appended once.
func AddRole(joined, role string) string {
	u := User{Roles: joined}
	if u.HasRole(role) {
		return joined
	}
	return RolesJoin(append(u.RolesSlice(), role))
}
