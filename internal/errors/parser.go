package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo pairs a response code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a low-level error into a response code and message,
// hiding driver details while keeping enough for the user to act on.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// PostgreSQL constraint violations

	// unique_violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A matching record already exists",
		}
	}

	// foreign_key_violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The referenced record does not exist or is still in use",
		}
	}

	// not_null_violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// Connectivity failures (database, payment processor, S3)
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service is unavailable. Please try again shortly",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again shortly",
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "menu item":
		return "The requested dish could not be found"
	case "cart item":
		return "The requested cart line could not be found"
	case "user":
		return "The requested account could not be found"
	case "order":
		return "The requested order could not be found"
	default:
		return "The requested resource could not be found"
	}
}

// ParseAndRespond parses an error and writes the response in one step.
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusCode, info.Code, info.Message)
}
