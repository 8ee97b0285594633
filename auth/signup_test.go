package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JamieOgun/PixelPanel/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

type fakeRegistrar struct {
	calls int
	err   error
	resp  *auth.RegisterUserResponse
}

func (f *fakeRegistrar) Execute(ctx context.Context, event auth.RegisterUserMessage) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if event.OnResponse != nil {
		event.OnResponse(f.resp)
	}
	return nil
}

func TestSignupPasswordMismatchIsLocal(t *testing.T) {
	registrar := &fakeRegistrar{}
	flow := auth.NewSignupFlow(registrar)

	outcome, created := flow.Signup(context.Background(), auth.SignupInput{
		Email:           "tester@example.com",
		Password:        "six-chars",
		ConfirmPassword: "six-chars-different",
	})

	assert.Equal(t, auth.SignupToneError, outcome.Tone)
	assert.Equal(t, "Passwords do not match", outcome.Message)
	assert.False(t, outcome.IsSuccess())
	assert.Nil(t, created)
	assert.Equal(t, 0, registrar.calls, "mismatched passwords must never reach the registrar")
}

func TestSignupMatchingPasswordsRegisterOnce(t *testing.T) {
	registrar := &fakeRegistrar{
		resp: &auth.RegisterUserResponse{
			User: &auth.User{Email: "tester@example.com"},
		},
	}
	flow := auth.NewSignupFlow(registrar)

	outcome, created := flow.Signup(context.Background(), auth.SignupInput{
		Email:           "tester@example.com",
		Password:        "six-chars",
		ConfirmPassword: "six-chars",
	})

	assert.Equal(t, 1, registrar.calls)
	assert.Equal(t, auth.SignupToneSuccess, outcome.Tone)
	assert.Equal(t, "Check your email for the confirmation link!", outcome.Message)
	assert.True(t, outcome.IsSuccess())
	if assert.NotNil(t, created) {
		assert.Equal(t, "tester@example.com", created.User.Email)
	}
}

func TestSignupRegistrarErrorsSurfaceVerbatim(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "rich error message",
			err:      goerrors.New("User already registered", goerrors.CategoryConflict),
			expected: "User already registered",
		},
		{
			name:     "plain error message",
			err:      errors.New("connection refused"),
			expected: "connection refused",
		},
		{
			name:     "message mentioning success still renders as error",
			err:      errors.New("successfully failed to create account"),
			expected: "successfully failed to create account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := &fakeRegistrar{err: tt.err}
			flow := auth.NewSignupFlow(registrar)

			outcome, created := flow.Signup(context.Background(), auth.SignupInput{
				Email:           "tester@example.com",
				Password:        "six-chars",
				ConfirmPassword: "six-chars",
			})

			assert.Equal(t, 1, registrar.calls)
			assert.Equal(t, auth.SignupToneError, outcome.Tone)
			assert.Equal(t, tt.expected, outcome.Message)
			assert.Nil(t, created)
		})
	}
}

func TestSignupEmptyPasswordsStillMatch(t *testing.T) {
	// empty passwords agree with each other, rejecting them is the
	// payload validator's job
	registrar := &fakeRegistrar{resp: &auth.RegisterUserResponse{}}
	flow := auth.NewSignupFlow(registrar)

	outcome, _ := flow.Signup(context.Background(), auth.SignupInput{
		Email: "tester@example.com",
	})

	assert.Equal(t, 1, registrar.calls)
	assert.True(t, outcome.IsSuccess())
}

func TestSignupOutcomeConstructors(t *testing.T) {
	success := auth.SignupSuccessOutcome()
	assert.Equal(t, auth.SignupToneSuccess, success.Tone)
	assert.Equal(t, auth.MsgSignupSuccess, success.Message)

	failure := auth.SignupErrorOutcome("nope")
	assert.Equal(t, auth.SignupToneError, failure.Tone)
	assert.Equal(t, "nope", failure.Message)
	assert.False(t, failure.IsSuccess())
}
