package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL
// The storefront maps these codes to user-facing messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // sign-in required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed or forged token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // signed out
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // no access
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // admin panel only
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // no role in context

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // bad request body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // bad identifier
	ValidationRequired     = "VALIDATION_REQUIRED"      // missing required field

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // no such row
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // duplicate
	ResourceConflict      = "RESOURCE_CONFLICT"       // constraint conflict

	// ==================== Menu (MENU_) ====================
	MenuItemNotFound = "MENU_ITEM_NOT_FOUND" // unknown dish

	// ==================== Cart (CART_) ====================
	CartItemNotFound = "CART_ITEM_NOT_FOUND" // unknown cart line

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutEmptyCart      = "CHECKOUT_EMPTY_CART"      // nothing to pay for
	CheckoutInvalidTotal   = "CHECKOUT_INVALID_TOTAL"   // non-positive total
	CheckoutMissingBilling = "CHECKOUT_MISSING_BILLING" // required billing field empty
	CheckoutPaymentFailed  = "CHECKOUT_PAYMENT_FAILED"  // processor rejected the payment

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // non-image upload
	UploadFailed          = "UPLOAD_FAILED"            // presign/upload error

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // unexpected failure
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // database failure
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // payment processor / S3 failure
)
