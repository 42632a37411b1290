package users

import "time"

// User represents a platform account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsSiteAdmin  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Deleted reports whether the account was soft-deleted.
func (u User) Deleted() bool { return u.DeletedAt != nil }
