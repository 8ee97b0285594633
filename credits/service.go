package credits

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultGenerationCost is how many credits one panel generation burns.
var DefaultGenerationCost = 1

// ErrInsufficientCredits is returned when a deduction would go below zero
var ErrInsufficientCredits = goerrors.New("insufficient credits", goerrors.CategoryConflict).
	WithTextCode("INSUFFICIENT_CREDITS")

// ErrProfileNotFound is returned when no profile row exists for the user
var ErrProfileNotFound = goerrors.New("user profile not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("PROFILE_NOT_FOUND")

var AddCreditsSQL = `UPDATE "user_profiles" AS "prf"
SET
	"credits" = "credits" + ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"prf"."deleted_at" IS NULL
AND (
	"prf"."user_id" = ?
) RETURNING *;`

var DeductCreditsSQL = `UPDATE "user_profiles" AS "prf"
SET
	"credits" = "credits" - ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"prf"."deleted_at" IS NULL
AND "prf"."credits" >= ?
AND (
	"prf"."user_id" = ?
) RETURNING *;`

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Service manages credit balances. Balance changes run in transactions and
// never take a profile below zero.
type Service struct {
	repo   RepositoryManager
	logger Logger
}

// NewService wires a credits service around the repositories.
func NewService(repo RepositoryManager) *Service {
	return &Service{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the service.
func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// GetProfile returns the profile for the given user.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	profile, err := s.repo.Profiles().GetByID(ctx, userID.String())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user profile")
	}
	return profile, nil
}

// GetCredits returns the balance for the given user. Users without a
// profile report a zero balance.
func (s *Service) GetCredits(ctx context.Context, userID uuid.UUID) (int, error) {
	profile, err := s.repo.Profiles().GetByID(ctx, userID.String())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return 0, nil
		}
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user profile")
	}
	return profile.Credits, nil
}

// HasSufficient reports whether the user can afford the given amount.
func (s *Service) HasSufficient(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	balance, err := s.GetCredits(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// AddCredits grants credits to a user, creating the profile if needed, and
// returns the new balance.
func (s *Service) AddCredits(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, goerrors.New("credit amount must be positive", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"amount": amount})
	}

	balance := 0

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.EnsureProfileTx(ctx, tx, userID); err != nil {
			return err
		}

		rows, err := s.repo.Profiles().RawTx(ctx, tx, AddCreditsSQL, amount, userID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to grant credits")
		}

		if len(rows) == 0 {
			return ErrProfileNotFound
		}

		balance = rows[0].Credits
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return 0, richErr
		}
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "credit grant transaction failed")
	}

	return balance, nil
}

// DeductCredits burns credits from a user and returns the new balance. The
// update is conditional on the current balance so two concurrent deductions
// cannot drive it negative.
func (s *Service) DeductCredits(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, goerrors.New("credit amount must be positive", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"amount": amount})
	}

	balance := 0

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rows, err := s.repo.Profiles().RawTx(ctx, tx, DeductCreditsSQL, amount, amount, userID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deduct credits")
		}

		if len(rows) == 0 {
			return ErrInsufficientCredits
		}

		balance = rows[0].Credits
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return 0, richErr
		}
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "credit deduction transaction failed")
	}

	return balance, nil
}

// EnsureProfile creates the profile row when missing.
func (s *Service) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.EnsureProfileTx(ctx, tx, userID)
	})
}

// EnsureProfileTx creates the profile row when missing, inside an existing
// transaction. Satisfies the signup flow's profile hook.
func (s *Service) EnsureProfileTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := s.repo.Profiles().GetByIDTx(ctx, tx, userID.String())
	if err == nil {
		return nil
	}

	if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user profile")
	}

	if _, err := s.repo.Profiles().CreateTx(ctx, tx, NewUserProfile(userID)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user profile")
	}

	return nil
}

// GetName returns the profile name, empty when unset or missing.
func (s *Service) GetName(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := s.repo.Profiles().GetByID(ctx, userID.String())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user profile")
	}
	return profile.Name, nil
}

// UpdateName sets the display name on the profile, creating it if needed.
func (s *Service) UpdateName(ctx context.Context, userID uuid.UUID, name string) error {
	return s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.EnsureProfileTx(ctx, tx, userID); err != nil {
			return err
		}

		now := time.Now()
		profile := &UserProfile{
			UserID:    userID,
			Name:      name,
			UpdatedAt: &now,
		}

		if _, err := s.repo.Profiles().UpdateTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile name")
		}

		return nil
	})
}
