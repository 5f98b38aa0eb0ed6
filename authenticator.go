package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther exchanges credentials for bearer access tokens. Access tokens carry
// MissionAccessToken and are the only tokens that skip the blacklist: they
// are verified on every request and consuming them would make each one
// single-use.
type Auther struct {
	repo           RepositoryManager
	codec          *TokenCodec
	revoker        TokenRevoker
	tokenLifetime  time.Duration
	logger         Logger
	accessVerifier *MissionVerifier
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(repo RepositoryManager, codec *TokenCodec, revoker TokenRevoker, cfg Config) *Auther {
	a := &Auther{
		repo:          repo,
		codec:         codec,
		revoker:       revoker,
		tokenLifetime: cfg.GetAccessTokenLifetime(),
		logger:        defLogger{},
	}

	a.accessVerifier = NewMissionVerifier(
		codec,
		revoker,
		repo.Users(),
		MissionAccessToken,
		WithoutConsumption(),
		WithConfirmedPrincipal(),
	)

	return a
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Login verifies the credentials and returns a signed access token. Wrong
// email, wrong password, and an unconfirmed account all produce the same
// ErrInvalidCredentials so none of them can be told apart by a caller.
func (a *Auther) Login(ctx context.Context, email, password string) (string, error) {
	user, err := a.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// Burn comparable time so a missing account is not detectable
			// through response latency.
			ComparePasswordAndHash(password, RandomPasswordHash())
			return "", ErrInvalidCredentials
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		a.logger.Debug("Login rejected password for %s", email)
		return "", ErrInvalidCredentials
	}

	if !user.IsConfirmed {
		a.logger.Debug("Login rejected unconfirmed account %s", email)
		return "", ErrInvalidCredentials
	}

	token, err := a.codec.Issue(user.ID, MissionAccessToken, a.tokenLifetime)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue access token")
	}

	return token, nil
}

// AccessVerifier returns the verifier guarding general API access: it
// accepts MissionAccessToken only, does not consume, and requires a
// confirmed principal.
func (a *Auther) AccessVerifier() *MissionVerifier {
	return a.accessVerifier
}
