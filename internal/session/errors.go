package session

import "errors"

// Domain errors. Handlers map these to typed response codes.
var (
	// ErrInvalidQuiz means the quiz definition has zero items; no session
	// state is created.
	ErrInvalidQuiz = errors.New("quiz has no items")

	// ErrIllegalTransition means the requested action is not permitted in
	// the session's current phase or mode. The session state is unchanged.
	ErrIllegalTransition = errors.New("illegal session transition")

	// ErrSessionSubmitted means the session already produced its attempt
	// record; all further actions are no-ops.
	ErrSessionSubmitted = errors.New("session already submitted")

	// ErrInvalidOption means the selected option index is outside the
	// current item's option range.
	ErrInvalidOption = errors.New("option index out of range")

	// ErrInvalidPosition means a jump target is outside the item range.
	ErrInvalidPosition = errors.New("item position out of range")
)
