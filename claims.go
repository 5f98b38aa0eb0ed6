package userauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MissionClaims is the claims set carried by every token this package issues:
// the registered sub/exp pair plus the mission tag.
type MissionClaims struct {
	jwt.RegisteredClaims
	Mission Mission `json:"mission"`
}

// SubjectID returns the subject claim parsed as an account id.
func (c *MissionClaims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.RegisteredClaims.Subject)
}

// ExpiresAt returns the expiry instant. Zero when the claim is absent, which
// Parse already rejects.
func (c *MissionClaims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// wellFormed checks structural validity beyond the signature: all three
// claims present and the mission recognized.
func (c *MissionClaims) wellFormed() bool {
	if c.RegisteredClaims.Subject == "" {
		return false
	}
	if c.RegisteredClaims.ExpiresAt == nil {
		return false
	}
	return c.Mission.IsValid()
}
