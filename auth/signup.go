package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// SignupTone tells the UI how to render a signup message. We carry an
// explicit discriminant instead of sniffing message text for words like
// "error", so renamed or translated copy can never flip the styling.
type SignupTone string

const (
	// SignupToneSuccess renders the message in the success style
	SignupToneSuccess SignupTone = "success"
	// SignupToneError renders the message in the error style
	SignupToneError SignupTone = "error"
)

const (
	// MsgSignupSuccess is shown after the confirmation email goes out
	MsgSignupSuccess = "Check your email for the confirmation link!"
	// MsgPasswordMismatch is shown when the two password fields differ
	MsgPasswordMismatch = "Passwords do not match"
)

// SignupOutcome is the result of a signup attempt, ready for display.
type SignupOutcome struct {
	Tone    SignupTone `json:"tone"`
	Message string     `json:"message"`
}

// IsSuccess reports whether the attempt created an account.
func (o SignupOutcome) IsSuccess() bool { return o.Tone == SignupToneSuccess }

// SignupSuccessOutcome is the single success result.
func SignupSuccessOutcome() SignupOutcome {
	return SignupOutcome{Tone: SignupToneSuccess, Message: MsgSignupSuccess}
}

// SignupErrorOutcome wraps a display message in the error tone.
func SignupErrorOutcome(message string) SignupOutcome {
	return SignupOutcome{Tone: SignupToneError, Message: message}
}

// SignupInput is what the signup form collects.
type SignupInput struct {
	DisplayName     string
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// RegisterExecutor runs a user registration command.
type RegisterExecutor interface {
	Execute(ctx context.Context, event RegisterUserMessage) error
}

// SignupFlow runs the full signup: local validation, account creation,
// and the confirmation email kickoff.
type SignupFlow struct {
	register RegisterExecutor
}

// NewSignupFlow wires the flow around a register handler.
func NewSignupFlow(register RegisterExecutor) *SignupFlow {
	return &SignupFlow{register: register}
}

// Signup executes a signup attempt and returns a displayable outcome.
// Password mismatches are rejected locally, before any account call is
// made. Failures from account creation surface their message verbatim.
func (f *SignupFlow) Signup(ctx context.Context, input SignupInput) (SignupOutcome, *RegisterUserResponse) {
	if input.Password != input.ConfirmPassword {
		return SignupErrorOutcome(MsgPasswordMismatch), nil
	}

	var created *RegisterUserResponse

	err := f.register.Execute(ctx, RegisterUserMessage{
		DisplayName: input.DisplayName,
		Username:    input.Username,
		Email:       input.Email,
		Phone:       input.Phone,
		Password:    input.Password,
		OnResponse: func(resp *RegisterUserResponse) {
			created = resp
		},
	})

	if err != nil {
		return SignupErrorOutcome(signupErrorMessage(err)), nil
	}

	return SignupSuccessOutcome(), created
}

// signupErrorMessage pulls the user facing message out of an error.
func signupErrorMessage(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return err.Error()
}
