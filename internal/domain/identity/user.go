package identity

import (
	"strings"

	"github.com/creditmonitor/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a user's access level
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Password cost for bcrypt
const bcryptCost = 12

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User represents an operator account. Users are created by admin action and
// are never deleted by the normal flow.
type User struct {
	shared.BaseEntity
	Username     string
	PasswordHash string
	FullName     string
	Role         Role
}

// NewUser creates a new user with a hashed password
func NewUser(username, password, fullName string, role Role) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.NewDomainError("INVALID_FULL_NAME", "Full name is required")
	}
	if !role.Valid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be 'staff' or 'admin'")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
	}, nil
}

// VerifyPassword checks the given password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword rotates the user's credential after verifying the old one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RequireRole is the single capability check for role-gated operations.
// Admin satisfies every role requirement.
func RequireRole(u *User, required Role) error {
	if u == nil {
		return shared.ErrUnauthorized
	}
	if u.Role == required || u.Role == RoleAdmin {
		return nil
	}
	return shared.ErrForbidden
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username is required")
	}
	if len(username) < 3 || len(username) > 50 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be between 3 and 50 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt input limit
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
