package userauth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is above the library default; hashing takes on the order of a
// second. Raising or lowering it invalidates no stored digests.
const bcryptCost = 14

// HashPassword derives a bcrypt digest from the cleartext password. Empty
// passwords never reach the hasher.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

// ComparePasswordAndHash checks the cleartext password against a stored
// digest. A mismatch surfaces as ErrInvalidCredentials; any other error is a
// digest problem, not a wrong password.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}

// RandomPasswordHash returns the digest of a throwaway random password.
// Login compares against it when no account matches the email, keeping the
// missing-account path as slow as a real comparison.
func RandomPasswordHash() string {
	digest, err := HashPassword(uuid.NewString())
	if err != nil {
		return RandomPasswordHash()
	}

	return digest
}
