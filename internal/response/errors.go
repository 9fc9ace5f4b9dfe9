package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrPasswordChangeDue  ErrCode = "PASSWORD_CHANGE_REQUIRED"
	ErrWrongPassword      ErrCode = "WRONG_PASSWORD"

	// Authorization
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrUserAccessOnly  ErrCode = "USER_ACCESS_ONLY"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// Exam-specific
	ErrExamNotActive    ErrCode = "EXAM_NOT_ACTIVE"
	ErrExamNotStarted   ErrCode = "EXAM_NOT_STARTED"
	ErrAlreadyAttempted ErrCode = "MAX_ATTEMPTS_REACHED"
	ErrNoValidQuestions ErrCode = "NO_VALID_QUESTIONS"
	ErrSessionCorrupt   ErrCode = "SESSION_CORRUPT"
	ErrResultsHidden    ErrCode = "RESULTS_NOT_AVAILABLE"
	ErrReviewDisabled   ErrCode = "ANSWER_REVIEW_DISABLED"
	ErrRankingsHidden   ErrCode = "RANKINGS_NOT_AVAILABLE"

	// Rate limiting
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Service number/username or password is incorrect."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrPasswordChangeDue:
		return "You must change your password before continuing."
	case ErrWrongPassword:
		return "Current password is incorrect."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrUserAccessOnly:
		return "This resource is restricted to examinees."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrExamNotActive:
		return "Exam not found or not active."
	case ErrExamNotStarted:
		return "Exam cannot be started yet; it has not reached its scheduled start."
	case ErrAlreadyAttempted:
		return "You have already used all attempts for this exam."
	case ErrNoValidQuestions:
		return "No valid questions available for this exam. Please contact the administrator."
	case ErrSessionCorrupt:
		return "An error occurred while processing your exam session."
	case ErrResultsHidden:
		return "Results for this exam are not available immediately. Please check back later."
	case ErrReviewDisabled:
		return "Answer review is not enabled."
	case ErrRankingsHidden:
		return "Rankings are not available."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
