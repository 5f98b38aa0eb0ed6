package userauth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidToken      = "auth_invalid_token"
	TextCodeInvalidCreds      = "auth_invalid_credentials"
	TextCodePrincipalNotFound = "auth_principal_not_found"
	TextCodeDuplicateIdentity = "auth_duplicate_identity"
	TextCodeStoreUnavailable  = "auth_store_unavailable"
	TextCodeEmptyPassword     = "auth_empty_password"
	TextCodeUndeliverable     = "auth_mission_not_deliverable"
)

// ErrInvalidToken is the single rejection for every authentication-stage
// failure: bad signature, malformed claims, expired token, mission mismatch,
// and already-revoked tokens all collapse into it so callers cannot probe
// which check failed.
var ErrInvalidToken = errors.New("the given token is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeBadRequest)

// ErrPrincipalNotFound is returned when a structurally valid token references
// an account that does not exist, or one that fails a required state check.
var ErrPrincipalNotFound = errors.New("the token principal has not been found", errors.CategoryNotFound).
	WithTextCode(TextCodePrincipalNotFound).
	WithCode(errors.CodeNotFound)

// ErrDuplicateIdentity is returned when account creation violates the email
// uniqueness constraint.
var ErrDuplicateIdentity = errors.New("an account with this email address already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials is the login failure; it deliberately does not
// distinguish wrong email, wrong password, or an unconfirmed account.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrStoreUnavailable is returned when the revocation or account store cannot
// be reached. It is kept distinct from ErrInvalidToken so operators can alert
// on it; it is never a client-caused condition.
var ErrStoreUnavailable = errors.New("backing store unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeStoreUnavailable)

// ErrMissionNotDeliverable is returned when a caller asks for an out-of-band
// token with a mission that is not on the deliverable allow-list.
var ErrMissionNotDeliverable = errors.New("tokens with this mission cannot be requested", errors.CategoryBadInput).
	WithTextCode(TextCodeUndeliverable).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsInvalidToken reports whether err carries the uniform invalid-token code.
func IsInvalidToken(err error) bool {
	return hasTextCode(err, TextCodeInvalidToken)
}

// IsStoreUnavailable reports whether err signals store unavailability.
func IsStoreUnavailable(err error) bool {
	return hasTextCode(err, TextCodeStoreUnavailable)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
