package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ConfirmUserMessage struct {
	Token      string `json:"token"`
	OnResponse func(user *User)
}

func (e ConfirmUserMessage) Type() string { return "user.confirm" }

// ConfirmUserHandler finishes registration: it verifies a single-use
// registration-confirmation token and flips the account's confirmed flag.
// Once confirmed an account can never be unconfirmed again.
type ConfirmUserHandler struct {
	repo     RepositoryManager
	verifier *MissionVerifier
	logger   Logger
}

func NewConfirmUserHandler(repo RepositoryManager, codec *TokenCodec, revoker TokenRevoker) *ConfirmUserHandler {
	return &ConfirmUserHandler{
		repo:     repo,
		verifier: NewMissionVerifier(codec, revoker, repo.Users(), MissionRegistrationConfirmation),
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ConfirmUserHandler) WithLogger(logger Logger) *ConfirmUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmUserHandler) Execute(ctx context.Context, event ConfirmUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmUserHandler) execute(ctx context.Context, event ConfirmUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.verifier.Verify(ctx, event.Token)
	if err != nil {
		return err
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Users().ConfirmTx(ctx, tx, user.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm account")
	}

	user.IsConfirmed = true
	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
