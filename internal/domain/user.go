package domain

import (
	"context"
	"time"
)

// User represents a registered account. Avatar holds the normalized PNG
// bytes and is nil until one has been uploaded.
type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Age          int       `db:"age"`
	Avatar       []byte    `db:"avatar"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UserPatch carries a partial profile update. Nil fields are left untouched.
// Password is the raw value; hashing happens in the service layer.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
	SaveAvatar(ctx context.Context, id int64, avatar []byte) error
	ClearAvatar(ctx context.Context, id int64) error
	GetAvatar(ctx context.Context, id int64) ([]byte, error)
}

// TokenRepository tracks the set of session tokens a user may authenticate
// with. A token whose signature still verifies but has no row here must be
// rejected; logout works by deleting rows.
type TokenRepository interface {
	Add(ctx context.Context, userID int64, token string) error
	Exists(ctx context.Context, userID int64, token string) (bool, error)
	Remove(ctx context.Context, userID int64, token string) error
	RemoveAll(ctx context.Context, userID int64) error
}
