package userauth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	IsConfirmed   bool       `bun:"is_confirmed,notnull,default:false" json:"is_confirmed"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// FullName joins the display fields for notification templates.
func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// ConfirmationDeadline is the instant after which an unconfirmed account is
// eligible for reaping: its creation time plus the lifetime that was
// configured for the registration-confirmation token. An account younger than
// that lifetime may still hold a usable confirmation token.
func (u *User) ConfirmationDeadline(confirmationLifetime time.Duration) time.Time {
	if u.CreatedAt == nil {
		return time.Time{}
	}
	return u.CreatedAt.Add(confirmationLifetime)
}
