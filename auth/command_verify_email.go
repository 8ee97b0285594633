package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ConfirmEmailMessage struct {
	Session    string `json:"session" example:"350399bc-c095-4bdc-a59c-3352d44848e4" doc:"Email confirmation token"`
	OnResponse func(resp *ConfirmEmailResponse)
}

func (e ConfirmEmailMessage) Type() string { return "user.confirm_email" }

type ConfirmEmailResponse struct {
	Found    bool   `json:"found" example:"true" doc:"Has the confirmation token been found?"`
	Expired  bool   `json:"expired" example:"false" doc:"Has the token expired?"`
	Email    string `json:"email" example:"user@example.com" doc:"Confirmed email address."`
	Verified bool   `json:"verified" example:"true" doc:"Was the email marked as verified?"`
}

type ConfirmEmailHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

// NewConfirmEmailHandler creates a handler with sane defaults.
func NewConfirmEmailHandler(repo RepositoryManager) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit confirmation events.
func (h *ConfirmEmailHandler) WithActivitySink(sink ActivitySink) *ConfirmEmailHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ConfirmEmailHandler) WithLogger(logger Logger) *ConfirmEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	verification := &EmailVerification{}
	resp := &ConfirmEmailResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		verification, err = h.repo.EmailVerifications().GetByID(ctx, event.Session)
		if err != nil {
			// unknown tokens are part of the expected flow, not an application error
			if goerrors.IsNotFound(err) {
				resp.Found = false
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve email verification")
		}

		resp.Found = true
		resp.Email = verification.Email

		if verification.Status == VerificationConfirmed {
			// following the link twice is harmless
			resp.Verified = true
			return nil
		}

		if verification.Status != VerificationPending {
			resp.Expired = true
			return nil
		}

		if verification.IsExpired(time.Now()) {
			verification.Status = VerificationExpired
			if _, err := h.repo.EmailVerifications().UpdateTx(ctx, tx, verification); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to expire email verification")
			}
			resp.Expired = true
			return nil
		}

		if verification.UserID == nil {
			return goerrors.New("email verification record is not associated with a user", goerrors.CategoryInternal)
		}

		if _, err := h.repo.Users().RawTx(ctx, tx, ConfirmUserEmailSQL, verification.UserID.String()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark user email as verified")
		}

		now := time.Now()
		verification.Status = VerificationConfirmed
		verification.ConfirmedAt = &now
		if _, err := h.repo.EmailVerifications().UpdateTx(ctx, tx, verification); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update email verification status")
		}

		resp.Verified = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm email")
	}

	if resp.Verified && verification.UserID != nil {
		h.recordActivity(ctx, verification)
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *ConfirmEmailHandler) recordActivity(ctx context.Context, verification *EmailVerification) {
	event := ActivityEvent{
		EventType: ActivityEventEmailConfirmed,
		Actor: ActorRef{
			ID:   verification.UserID.String(),
			Type: "user",
		},
		UserID: verification.UserID.String(),
		Metadata: map[string]any{
			"email":           verification.Email,
			"verification_id": verification.ID.String(),
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during email confirmation: %v", err)
	}
}
