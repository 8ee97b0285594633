package credits_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/JamieOgun/PixelPanel/credits"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// MockRepositoryManager implements credits.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Profiles() credits.Profiles {
	args := m.Called()
	return args.Get(0).(credits.Profiles)
}

// MockProfiles implements credits.Profiles
type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*credits.UserProfile, error) {
	args := m.Called(ctx, id, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credits.UserProfile), args.Error(1)
}

func (m *MockProfiles) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*credits.UserProfile, error) {
	args := m.Called(ctx, tx, id, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credits.UserProfile), args.Error(1)
}

func (m *MockProfiles) CreateTx(ctx context.Context, tx bun.IDB, record *credits.UserProfile, criteria ...repository.InsertCriteria) (*credits.UserProfile, error) {
	args := m.Called(ctx, tx, record, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credits.UserProfile), args.Error(1)
}

func (m *MockProfiles) UpdateTx(ctx context.Context, tx bun.IDB, record *credits.UserProfile, criteria ...repository.UpdateCriteria) (*credits.UserProfile, error) {
	args := m.Called(ctx, tx, record, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credits.UserProfile), args.Error(1)
}

func (m *MockProfiles) RawTx(ctx context.Context, tx bun.IDB, sqlStr string, params ...any) ([]*credits.UserProfile, error) {
	args := m.Called(ctx, tx, sqlStr, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credits.UserProfile), args.Error(1)
}

func runClosure(t *testing.T) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		t.Helper()
		fn := args.Get(2).(func(context.Context, bun.Tx) error)
		var tx bun.Tx
		_ = fn(args.Get(0).(context.Context), tx)
	}
}

func TestDeductCreditsReturnsNewBalance(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	profiles := &MockProfiles{}
	userID := uuid.New()

	repo.On("Profiles").Return(profiles)
	profiles.On("RawTx", mock.Anything, mock.Anything, credits.DeductCreditsSQL, mock.Anything).
		Return([]*credits.UserProfile{{UserID: userID, Credits: 4}}, nil).Once()

	var txErr error
	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			txErr = fn(args.Get(0).(context.Context), tx)
		}).
		Return(nil).Once()

	balance, err := credits.NewService(repo).DeductCredits(ctx, userID, 1)
	require.NoError(t, err)
	require.NoError(t, txErr)
	assert.Equal(t, 4, balance)

	repo.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestDeductCreditsNeverGoesBelowZero(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	profiles := &MockProfiles{}
	userID := uuid.New()

	// the guarded UPDATE matches no row when the balance is short
	repo.On("Profiles").Return(profiles)
	profiles.On("RawTx", mock.Anything, mock.Anything, credits.DeductCreditsSQL, mock.Anything).
		Return([]*credits.UserProfile{}, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(credits.ErrInsufficientCredits).
		Run(runClosure(t)).Once()

	balance, err := credits.NewService(repo).DeductCredits(ctx, userID, 5)
	assert.Equal(t, 0, balance)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, goerrors.CategoryConflict, richErr.Category)
	assert.Equal(t, "INSUFFICIENT_CREDITS", richErr.TextCode)

	repo.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestDeductCreditsRejectsNonPositiveAmounts(t *testing.T) {
	repo := &MockRepositoryManager{}

	for _, amount := range []int{0, -3} {
		_, err := credits.NewService(repo).DeductCredits(context.Background(), uuid.New(), amount)
		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, goerrors.CategoryBadInput, richErr.Category)
	}

	repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddCreditsGrantsAndReturnsBalance(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	profiles := &MockProfiles{}
	userID := uuid.New()

	repo.On("Profiles").Return(profiles)
	profiles.On("GetByIDTx", mock.Anything, mock.Anything, userID.String(), mock.Anything).
		Return(&credits.UserProfile{UserID: userID, Credits: 2}, nil).Once()
	profiles.On("RawTx", mock.Anything, mock.Anything, credits.AddCreditsSQL, mock.Anything).
		Return([]*credits.UserProfile{{UserID: userID, Credits: 12}}, nil).Once()

	var txErr error
	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			txErr = fn(args.Get(0).(context.Context), tx)
		}).
		Return(nil).Once()

	balance, err := credits.NewService(repo).AddCredits(ctx, userID, 10)
	require.NoError(t, err)
	require.NoError(t, txErr)
	assert.Equal(t, 12, balance)

	repo.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestEnsureProfileCreatesMissingProfile(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	profiles := &MockProfiles{}
	userID := uuid.New()

	repo.On("Profiles").Return(profiles)
	profiles.On("GetByIDTx", mock.Anything, mock.Anything, userID.String(), mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()
	profiles.On("CreateTx", mock.Anything, mock.Anything,
		mock.MatchedBy(func(p *credits.UserProfile) bool {
			return p.UserID == userID && p.Credits == 0
		}), mock.Anything).
		Return(&credits.UserProfile{UserID: userID}, nil).Once()

	var tx bun.Tx
	svc := credits.NewService(repo)
	require.NoError(t, svc.EnsureProfileTx(ctx, tx, userID))

	profiles.AssertExpectations(t)
}
