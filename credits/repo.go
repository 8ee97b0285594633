package credits

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes the credits repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Profiles() Profiles
}

// Profiles is the slice of the profile repository the credits service
// uses. The concrete repository carries the full go-repository-bun
// surface; keeping the interface narrow lets tests fake it.
type Profiles interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*UserProfile, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*UserProfile, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *UserProfile, criteria ...repository.InsertCriteria) (*UserProfile, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *UserProfile, criteria ...repository.UpdateCriteria) (*UserProfile, error)
	RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]*UserProfile, error)
}

func NewProfilesRepository(db *bun.DB) repository.Repository[*UserProfile] {
	handlers := repository.ModelHandlers[*UserProfile]{
		NewRecord: func() *UserProfile {
			return &UserProfile{}
		},
		GetID: func(record *UserProfile) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.UserID
		},
		SetID: func(record *UserProfile, id uuid.UUID) {
			record.UserID = id
		},
		GetIdentifier: func() string {
			return "user_id"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db       *bun.DB
	profiles repository.Repository[*UserProfile]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		profiles: NewProfilesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}
	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Profiles() Profiles {
	return m.profiles
}
