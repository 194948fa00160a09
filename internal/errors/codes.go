package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_DETAIL. Clients map them to localized messages.
const (
	// auth
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthReferralInvalid    = "AUTH_REFERRAL_INVALID"

	// authorization
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzCompanyScope = "AUTHZ_COMPANY_SCOPE"

	// validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// cart
	CartEmpty        = "CART_EMPTY"
	CartItemNotFound = "CART_ITEM_NOT_FOUND"
	CartInvalidItem  = "CART_INVALID_ITEM"

	// orders
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"

	// payments
	PaymentNotCompleted        = "PAYMENT_NOT_COMPLETED"
	PaymentProviderError       = "PAYMENT_PROVIDER_ERROR"
	PaymentProviderDisabled    = "PAYMENT_PROVIDER_DISABLED"
	PaymentProviderUnavailable = "PAYMENT_PROVIDER_UNAVAILABLE"
	PaymentAlreadyUsed         = "PAYMENT_ALREADY_USED"

	// reviews
	ReviewNotFound       = "REVIEW_NOT_FOUND"
	ReviewInvalidRating  = "REVIEW_INVALID_RATING"
	ReviewNotPurchased   = "REVIEW_NOT_PURCHASED"
	ReviewAlreadyExists  = "REVIEW_ALREADY_EXISTS"
	ReviewCommentTooLong = "REVIEW_COMMENT_TOO_LONG"

	// uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadUnavailable     = "UPLOAD_UNAVAILABLE"

	// internal
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR"
)
