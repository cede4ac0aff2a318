package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked" // Locked after repeated failed logins
	UserStatusDeactivated UserStatus = "deactivated"
)

const bcryptCost = 12

// Lockout policy
const (
	maxFailedAttempts = 5
	lockoutDuration   = 15 * time.Minute
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{2,31}$`)
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the aggregate root for an operator account
type User struct {
	shared.TenantAggregateRoot
	Username       string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_user_tenant_username,priority:2"`
	Email          string     `gorm:"type:varchar(200);index"`
	PasswordHash   string     `gorm:"type:varchar(100);not null"`
	DisplayName    string     `gorm:"type:varchar(100);not null"`
	Status         UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user
func NewUser(tenantID uuid.UUID, username, password, displayName string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernameRegex.MatchString(username) {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-32 chars of lowercase letters, digits, . _ -")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            username,
		PasswordHash:        string(hash),
		DisplayName:         displayName,
		Status:              UserStatusActive,
	}, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !emailRegex.MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}

	u.Email = email
	u.Touch()
	u.IncrementVersion()

	return nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Display name cannot be empty")
	}

	u.DisplayName = name
	u.Touch()
	u.IncrementVersion()

	return nil
}

// VerifyPassword checks a login attempt against the stored hash.
// Failed attempts count toward lockout; success resets the counter.
func (u *User) VerifyPassword(password string) error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Account is deactivated")
	}
	if u.IsLocked() {
		return shared.NewDomainError("USER_LOCKED", "Account is locked, try again later")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		u.recordFailedAttempt()
		return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	now := time.Now()
	u.FailedAttempts = 0
	u.LockedUntil = nil
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
	}
	u.LastLoginAt = &now
	u.Touch()
	u.IncrementVersion()

	return nil
}

func (u *User) recordFailedAttempt() {
	u.FailedAttempts++
	if u.FailedAttempts >= maxFailedAttempts {
		until := time.Now().Add(lockoutDuration)
		u.Status = UserStatusLocked
		u.LockedUntil = &until
	}
	u.Touch()
	u.IncrementVersion()
}

// IsLocked reports whether the lockout window is still in force
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	return u.LockedUntil == nil || u.LockedUntil.After(time.Now())
}

// ChangePassword replaces the password after verifying the current one
func (u *User) ChangePassword(current, next string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = string(hash)
	u.Touch()
	u.IncrementVersion()

	return nil
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.Touch()
	u.IncrementVersion()
}

// Activate re-enables the account and clears any lockout
func (u *User) Activate() {
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
	u.IncrementVersion()
}

// IsActive reports whether the user may log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
