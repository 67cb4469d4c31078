package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrNotOwner  ErrCode = "NOT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quizzes & sharing ─────────────────────────────────────────────
	ErrInvalidQuiz      ErrCode = "INVALID_QUIZ"
	ErrInvalidShareCode ErrCode = "INVALID_SHARE_CODE"
	ErrGrantExists      ErrCode = "GRANT_EXISTS"

	// ─── Live sessions ─────────────────────────────────────────────────
	ErrSessionNotFound   ErrCode = "SESSION_NOT_FOUND"
	ErrSessionSubmitted  ErrCode = "SESSION_SUBMITTED"
	ErrIllegalTransition ErrCode = "ILLEGAL_TRANSITION"
	ErrInvalidOption     ErrCode = "INVALID_OPTION"
	ErrInvalidPosition   ErrCode = "INVALID_POSITION"
	ErrSessionActive     ErrCode = "SESSION_ALREADY_ACTIVE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrNotOwner:
		return "Only the owner can perform this action."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrNotFound:
		return "The resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrInvalidQuiz:
		return "The quiz has no questions."
	case ErrInvalidShareCode:
		return "The share code does not match any quiz."
	case ErrGrantExists:
		return "This user already has access to the quiz."
	case ErrSessionNotFound:
		return "No live session with this ID."
	case ErrSessionSubmitted:
		return "This session has already been submitted."
	case ErrIllegalTransition:
		return "This action is not allowed in the session's current state."
	case ErrInvalidOption:
		return "The selected option is out of range."
	case ErrInvalidPosition:
		return "The question position is out of range."
	case ErrSessionActive:
		return "You already have a live session for this quiz."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
