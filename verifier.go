package userauth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// MissionVerifier gates an operation behind a mission token. A verification
// call runs a fixed pipeline, terminal on first failure:
//
//  1. decode the token
//  2. compare the decoded mission against the expected one
//  3. check the revocation store
//  4. consume the token (unless configured not to)
//  5. resolve the principal referenced by the subject claim
//  6. optionally require the principal to be confirmed
//
// Steps 1-4 fail with the same ErrInvalidToken, so a caller cannot tell a
// forged token from an expired one from a replayed one. Steps 5-6 fail with
// ErrPrincipalNotFound, which is intentionally distinguishable: it can only
// be reached with a valid token.
type MissionVerifier struct {
	codec            *TokenCodec
	revoker          TokenRevoker
	principals       PrincipalResolver
	mission          Mission
	consume          bool
	requireConfirmed bool
	logger           Logger
}

type VerifierOption func(*MissionVerifier)

// WithoutConsumption leaves verified tokens unblocked so they can be
// presented again. Access-token verification uses this; mission tokens
// default to single use.
func WithoutConsumption() VerifierOption {
	return func(v *MissionVerifier) {
		v.consume = false
	}
}

// WithConfirmedPrincipal additionally requires the resolved account to be
// confirmed. Unconfirmed accounts are reported as not found, so their
// existence does not leak through a distinct status.
func WithConfirmedPrincipal() VerifierOption {
	return func(v *MissionVerifier) {
		v.requireConfirmed = true
	}
}

func WithVerifierLogger(logger Logger) VerifierOption {
	return func(v *MissionVerifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewMissionVerifier builds a verifier that only accepts tokens carrying the
// given mission.
func NewMissionVerifier(codec *TokenCodec, revoker TokenRevoker, principals PrincipalResolver, mission Mission, opts ...VerifierOption) *MissionVerifier {
	v := &MissionVerifier{
		codec:      codec,
		revoker:    revoker,
		principals: principals,
		mission:    mission,
		consume:    true,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	return v
}

// Mission returns the mission this verifier accepts.
func (v *MissionVerifier) Mission() Mission {
	return v.mission
}

// Verify runs the verification pipeline and returns the authorized principal.
func (v *MissionVerifier) Verify(ctx context.Context, token string) (*User, error) {
	claims, err := v.codec.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Mission != v.mission {
		return nil, ErrInvalidToken
	}

	// The lookup must happen strictly before the block below: blocking first
	// would consume a token that was already rejected.
	blocked, err := v.revoker.IsBlocked(ctx, token)
	if err != nil {
		return nil, v.storeFailure(err, "revocation check failed")
	}
	if blocked {
		return nil, ErrInvalidToken
	}

	if v.consume {
		created, err := v.revoker.BlockOnce(ctx, token, claims.ExpiresAt())
		if err != nil {
			return nil, v.storeFailure(err, "token consumption failed")
		}
		// A concurrent request consumed the token between the check above
		// and this write; the set-if-absent keeps use exactly-once.
		if !created {
			return nil, ErrInvalidToken
		}
	}

	user, err := v.principals.ResolveByID(ctx, claims.RegisteredClaims.Subject)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, v.storeFailure(err, "principal lookup failed")
	}

	if v.requireConfirmed && !user.IsConfirmed {
		return nil, ErrPrincipalNotFound
	}

	return user, nil
}

func (v *MissionVerifier) storeFailure(err error, msg string) error {
	v.logger.Error("MissionVerifier %s store failure: %s", v.mission, err)

	if IsStoreUnavailable(err) {
		return err
	}

	return errors.Wrap(err, ErrStoreUnavailable.Category, msg).
		WithTextCode(TextCodeStoreUnavailable)
}
