package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestConfirmEmailExpiredTokenIsMarkedExpired(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	verifications := &MockEmailVerifications{}

	userID := uuid.New()
	past := time.Now().Add(-time.Hour)
	record := &auth.EmailVerification{
		ID:        uuid.New(),
		UserID:    &userID,
		Email:     "reader@example.com",
		Status:    auth.VerificationPending,
		ExpiresAt: &past,
	}

	repo.On("EmailVerifications").Return(verifications)
	verifications.On("GetByID", mock.Anything, "stale-token", mock.Anything).
		Return(record, nil).Once()
	verifications.On("UpdateTx", mock.Anything, mock.Anything,
		mock.MatchedBy(func(v *auth.EmailVerification) bool {
			return v.Status == auth.VerificationExpired
		}), mock.Anything).
		Return(record, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()

	var resp *auth.ConfirmEmailResponse
	handler := auth.NewConfirmEmailHandler(repo).WithLogger(testLogger{})
	err := handler.Execute(ctx, auth.ConfirmEmailMessage{
		Session: "stale-token",
		OnResponse: func(r *auth.ConfirmEmailResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Found)
	assert.True(t, resp.Expired)
	assert.False(t, resp.Verified)

	repo.AssertExpectations(t)
	verifications.AssertExpectations(t)
}

func TestConfirmEmailPendingTokenVerifiesUser(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	verifications := &MockEmailVerifications{}
	users := &MockUsers{}
	sink := &MockActivitySink{}

	userID := uuid.New()
	future := time.Now().Add(time.Hour)
	record := &auth.EmailVerification{
		ID:        uuid.New(),
		UserID:    &userID,
		Email:     "reader@example.com",
		Status:    auth.VerificationPending,
		ExpiresAt: &future,
	}

	repo.On("EmailVerifications").Return(verifications)
	repo.On("Users").Return(users)

	verifications.On("GetByID", mock.Anything, "fresh-token", mock.Anything).
		Return(record, nil).Once()
	users.On("RawTx", mock.Anything, mock.Anything, auth.ConfirmUserEmailSQL, mock.Anything).
		Return([]*auth.User{{}}, nil).Once()
	verifications.On("UpdateTx", mock.Anything, mock.Anything,
		mock.MatchedBy(func(v *auth.EmailVerification) bool {
			return v.Status == auth.VerificationConfirmed && v.ConfirmedAt != nil
		}), mock.Anything).
		Return(record, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()

	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt auth.ActivityEvent) bool {
		return evt.EventType == auth.ActivityEventEmailConfirmed &&
			evt.UserID == userID.String()
	})).Return(nil).Once()

	var resp *auth.ConfirmEmailResponse
	handler := auth.NewConfirmEmailHandler(repo).
		WithActivitySink(sink).
		WithLogger(testLogger{})
	err := handler.Execute(ctx, auth.ConfirmEmailMessage{
		Session: "fresh-token",
		OnResponse: func(r *auth.ConfirmEmailResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Found)
	assert.True(t, resp.Verified)
	assert.False(t, resp.Expired)
	assert.Equal(t, "reader@example.com", resp.Email)

	repo.AssertExpectations(t)
	verifications.AssertExpectations(t)
	users.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestConfirmEmailUnknownTokenReportsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	verifications := &MockEmailVerifications{}

	repo.On("EmailVerifications").Return(verifications)
	verifications.On("GetByID", mock.Anything, "unknown", mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()

	var resp *auth.ConfirmEmailResponse
	handler := auth.NewConfirmEmailHandler(repo).WithLogger(testLogger{})
	err := handler.Execute(ctx, auth.ConfirmEmailMessage{
		Session: "unknown",
		OnResponse: func(r *auth.ConfirmEmailResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Found)
}

func TestEmailVerificationIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&auth.EmailVerification{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&auth.EmailVerification{ExpiresAt: &future}).IsExpired(now))
	assert.False(t, (&auth.EmailVerification{}).IsExpired(now))
}
