package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RecoverPasswordMessage struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (e RecoverPasswordMessage) Type() string { return "user.recover_password" }

// RecoverPasswordHandler verifies a single-use recover-password token and
// replaces the account's credential with a hash of the new password.
type RecoverPasswordHandler struct {
	repo     RepositoryManager
	verifier *MissionVerifier
	logger   Logger
}

func NewRecoverPasswordHandler(repo RepositoryManager, codec *TokenCodec, revoker TokenRevoker) *RecoverPasswordHandler {
	return &RecoverPasswordHandler{
		repo:     repo,
		verifier: NewMissionVerifier(codec, revoker, repo.Users(), MissionRecoverPassword),
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *RecoverPasswordHandler) WithLogger(logger Logger) *RecoverPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RecoverPasswordHandler) Execute(ctx context.Context, event RecoverPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password recovery",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RecoverPasswordHandler) execute(ctx context.Context, event RecoverPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.verifier.Verify(ctx, event.Token)
	if err != nil {
		return err
	}

	passwordHash, err := HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, passwordHash)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account password")
	}

	return nil
}
