// Package auth provides authentication primitives (JWT issuance, stateful
// repositories, HTTP helpers) for the PixelPanel backend.
//
// Signup flow:
//   - SignupFlow runs the whole signup: the two password fields are compared
//     locally before any account call happens, account creation goes through
//     RegisterUserHandler, and the result comes back as a SignupOutcome whose
//     Tone field tells the UI how to style the message. Message text is never
//     inspected to decide styling.
//   - New accounts start unverified. Login is refused until the confirmation
//     link from the signup email is followed, which runs ConfirmEmailHandler.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     command handlers to describe signup, login, confirmation, and password
//     reset events. Sinks run best-effort (errors are logged) so you can
//     forward to a database or queue without blocking authentication.
package auth
