package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// MFATokenTemplate is the notification template used for every out-of-band
// mission token.
var MFATokenTemplate = "mfa_message.txt"

type RequestMissionTokenMessage struct {
	Email      string  `json:"email"`
	Mission    Mission `json:"mission"`
	OnResponse func(resp *RequestMissionTokenResponse)
}

func (e RequestMissionTokenMessage) Type() string { return "user.request_mission_token" }

type RequestMissionTokenResponse struct {
	Token   string
	Success bool
}

// RequestMissionTokenHandler implements the "send MFA token" flow: it issues
// a single-use token for one of the deliverable missions and hands it to the
// notifier. Delivery runs asynchronously; a delivery failure is logged and
// never rolls back issuance.
type RequestMissionTokenHandler struct {
	repo     RepositoryManager
	codec    *TokenCodec
	notifier Notifier
	lifetime time.Duration
	logger   Logger
}

func NewRequestMissionTokenHandler(repo RepositoryManager, codec *TokenCodec, lifetime time.Duration) *RequestMissionTokenHandler {
	return &RequestMissionTokenHandler{
		repo:     repo,
		codec:    codec,
		lifetime: lifetime,
		notifier: noopNotifier{},
		logger:   defLogger{},
	}
}

// WithNotifier sets the delivery channel for issued tokens.
func (h *RequestMissionTokenHandler) WithNotifier(n Notifier) *RequestMissionTokenHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RequestMissionTokenHandler) WithLogger(logger Logger) *RequestMissionTokenHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RequestMissionTokenHandler) Execute(ctx context.Context, event RequestMissionTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during mission token request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestMissionTokenHandler) execute(ctx context.Context, event RequestMissionTokenMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if !event.Mission.IsDeliverable() {
		return ErrMissionNotDeliverable
	}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrPrincipalNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for token request")
	}

	token, err := h.codec.Issue(user.ID, event.Mission, h.lifetime)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue mission token")
	}

	go func() {
		if err := h.notifier.Send(context.WithoutCancel(ctx), user.Email, token, MFATokenTemplate); err != nil {
			h.logger.Warn("mission token delivery to %s failed: %s", user.Email, err)
		}
	}()

	if event.OnResponse != nil {
		event.OnResponse(&RequestMissionTokenResponse{
			Token:   token,
			Success: true,
		})
	}

	return nil
}
