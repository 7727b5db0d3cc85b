package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Общие, не-доменные коды ошибок
const (
	// Системные и неизвестные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"

	// Аутентификация и Авторизация
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodePermissionDenied   ErrorCode = "PERMISSION_DENIED"
)

// Коды workflow-ошибок (переходы статусов, уникальность, отзывы)
const (
	CodeInvalidTransition        ErrorCode = "INVALID_TRANSITION"
	CodeInvalidPaymentTransition ErrorCode = "INVALID_PAYMENT_TRANSITION"
	CodeDuplicateReview          ErrorCode = "DUPLICATE_REVIEW"
	CodeDuplicatePayment         ErrorCode = "DUPLICATE_PAYMENT"
	CodeReviewNotEligible        ErrorCode = "REVIEW_NOT_ELIGIBLE"
	CodeInvalidReviewee          ErrorCode = "INVALID_REVIEWEE"
	CodeSelfAssignmentDenied     ErrorCode = "SELF_ASSIGNMENT_DENIED"
	CodeInvalidRating            ErrorCode = "INVALID_RATING"
	CodeInvalidComment           ErrorCode = "INVALID_COMMENT"
	CodeInvalidBudget            ErrorCode = "INVALID_BUDGET"
	CodeInvalidAmount            ErrorCode = "INVALID_AMOUNT"
	CodeRefundWindowExpired      ErrorCode = "REFUND_WINDOW_EXPIRED"
	CodeAccountInactive          ErrorCode = "ACCOUNT_INACTIVE"
)
