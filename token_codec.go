package userauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenCodec issues and parses signed mission tokens. The signing key and
// method are process-wide configuration; rotating the key invalidates every
// outstanding token.
type TokenCodec struct {
	signingKey    []byte
	signingMethod jwt.SigningMethod
	logger        Logger
}

// NewTokenCodec creates a codec for the given key and method name (e.g.
// "HS256"). An unknown method name falls back to HS256.
func NewTokenCodec(signingKey []byte, signingMethod string, logger Logger) *TokenCodec {
	if logger == nil {
		logger = defLogger{}
	}

	method := jwt.GetSigningMethod(signingMethod)
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	return &TokenCodec{
		signingKey:    signingKey,
		signingMethod: method,
		logger:        logger,
	}
}

// Issue builds and signs a token for the subject with the given mission and
// lifetime. The expiry claim is serialized at one-second precision, so a
// sub-second lifetime could truncate to an instant already in the past;
// lifetimes under a second are rejected. Issue has no side effects beyond
// signing.
func (tc *TokenCodec) Issue(subject uuid.UUID, mission Mission, lifetime time.Duration) (string, error) {
	if subject == uuid.Nil {
		return "", errors.New("token subject is required", errors.CategoryBadInput)
	}

	if !mission.IsValid() {
		return "", errors.New("unknown token mission", errors.CategoryBadInput).
			WithMetadata(map[string]any{"mission": mission.String()})
	}

	if lifetime < time.Second {
		return "", errors.New("token lifetime must be at least one second", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &MissionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		Mission: mission,
	}

	token := jwt.NewWithClaims(tc.signingMethod, claims)

	signedString, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signedString, nil
}

// Parse verifies the signature, structure, and expiry of a token and returns
// its claims. Every failure mode (bad signature, malformed or incomplete
// claims, expired token) is reported as the same ErrInvalidToken so external
// callers cannot tell them apart; the underlying cause is only logged.
func (tc *TokenCodec) Parse(tokenString string) (*MissionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &MissionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != tc.signingMethod.Alg() {
			tc.logger.Error("TokenCodec parse encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	})

	if err != nil {
		tc.logger.Debug("TokenCodec parse rejected token: %s", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*MissionClaims)
	if !ok || !token.Valid || !claims.wellFormed() {
		tc.logger.Debug("TokenCodec parse decoded structurally invalid claims")
		return nil, ErrInvalidToken
	}

	return claims, nil
}
