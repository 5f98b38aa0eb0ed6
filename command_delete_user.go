package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type DeleteUserMessage struct {
	Token string `json:"token"`
}

func (e DeleteUserMessage) Type() string { return "user.delete" }

// DeleteUserHandler verifies a single-use confirm-user-deletion token and
// removes the account. Only confirmed accounts can be deleted this way;
// unconfirmed ones are left to the reaper.
type DeleteUserHandler struct {
	repo     RepositoryManager
	verifier *MissionVerifier
	logger   Logger
}

func NewDeleteUserHandler(repo RepositoryManager, codec *TokenCodec, revoker TokenRevoker) *DeleteUserHandler {
	return &DeleteUserHandler{
		repo: repo,
		verifier: NewMissionVerifier(
			codec,
			revoker,
			repo.Users(),
			MissionConfirmUserDeletion,
			WithConfirmedPrincipal(),
		),
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *DeleteUserHandler) WithLogger(logger Logger) *DeleteUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *DeleteUserHandler) Execute(ctx context.Context, event DeleteUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteUserHandler) execute(ctx context.Context, event DeleteUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.verifier.Verify(ctx, event.Token)
	if err != nil {
		return err
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Users().RemoveTx(ctx, tx, user.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete account")
	}

	return nil
}
