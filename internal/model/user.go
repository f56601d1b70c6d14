package model

import "time"

// Roles understood by the authorization layer.  Stored verbatim in the
// users.role column and in the JWT "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleUser
}

// User mirrors the `users` table.  RefreshTokenHash holds the argon2id hash
// of the single currently-valid refresh token, or nil when the user has no
// active session.  The plaintext refresh token is never stored.
type User struct {
	ID               uint64
	Email            string
	FullName         string
	PasswordHash     string
	Role             string
	RefreshTokenHash *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicUser is the sanitized view returned by the API.  It never includes
// the password hash or the refresh-token hash.
type PublicUser struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public converts a User into its API view.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
