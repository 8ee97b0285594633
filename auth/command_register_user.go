package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// ProfileEnsurer creates the application profile that accompanies every new
// account. The credits package provides the concrete implementation.
type ProfileEnsurer interface {
	EnsureProfileTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

// DefaultPhoneRegion is the region used to parse national phone numbers.
var DefaultPhoneRegion = "US"

type RegisterUserMessage struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	Password    string `json:"password"`
	UseHashid   bool
	OnResponse  func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	User         *User
	Verification *EmailVerification
}

type RegisterUserHandler struct {
	repo     RepositoryManager
	profiles ProfileEnsurer
	activity ActivitySink
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithProfileEnsurer wires the profile bootstrap run for every new account.
func (h *RegisterUserHandler) WithProfileEnsurer(profiles ProfileEnsurer) *RegisterUserHandler {
	h.profiles = profiles
	return h
}

// WithActivitySink sets the sink used to emit signup events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	verification := &EmailVerification{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Phone = normalizePhone(event.Phone)
		user.DisplayName = event.DisplayName
		user.Role = event.Role
		user.Username = getUsername(event.Username, event.Email)
		user.EmailValidated = false
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			if IsDuplicateRecordError(err) {
				return ErrUserAlreadyRegistered
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		verification = NewEmailVerification(user)
		if verification, err = h.repo.EmailVerifications().CreateTx(ctx, tx, verification); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create email verification")
		}

		if h.profiles != nil {
			if err := h.profiles.EnsureProfileTx(ctx, tx, user.ID); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user profile")
			}
		}

		go func() {
			// TODO: we need to handle emails...
			printConfirmationNotification(user.Email, verification.ID.String())
		}()

		return nil
	})

	if err != nil {
		h.recordActivity(ctx, ActivityEventSignupFailure, event.Email, map[string]any{
			"error": err.Error(),
		})

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.recordActivity(ctx, ActivityEventSignupSuccess, user.ID.String(), map[string]any{
		"email": user.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:         user,
			Verification: verification,
		})
	}

	return nil
}

func (h *RegisterUserHandler) recordActivity(ctx context.Context, eventType ActivityEventType, userID string, meta map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{ID: userID, Type: "user"},
		UserID:     userID,
		Metadata:   meta,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during signup: %v", err)
	}
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}

// normalizePhone formats phone numbers to E.164, leaving input we cannot
// parse untouched so validation errors surface at the payload layer.
func normalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil {
		return phone
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func printConfirmationNotification(email, id string) {
	fmt.Println("====== SENDING CONFIRMATION EMAIL =======")
	fmt.Printf("to: %s\n", email)
	fmt.Printf(
		"link: /signup/confirm/%s\n",
		id,
	)
}
