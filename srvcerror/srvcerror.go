package srvcerror

import (
	"errors"
	"net/http"
)

// Category groups service errors so that callers can present one message
// per kind of failure.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryStorage    Category = "storage"
	CategoryDatabase   Category = "database"
	CategoryRateLimit  Category = "rate_limit"
)

type Error struct {
	errorCode  string
	category   Category
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) Unwrap() error {
	return e.dbgInfoErr
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) Category() Category {
	return e.category
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return defaultStatus(e.category)
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(category Category, errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		category:  category,
		msgToUser: msgToUser,
	}
}

func defaultStatus(c Category) int {
	switch c {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryAuth:
		return http.StatusUnauthorized
	case CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation, Auth and RateLimit carry a specific message for the user.

func Validation(errorCode string, msgToUser string) *Error {
	return New(CategoryValidation, errorCode, msgToUser)
}

func Auth(errorCode string, msgToUser string) *Error {
	return New(CategoryAuth, errorCode, msgToUser)
}

func RateLimit(errorCode string, msgToUser string) *Error {
	return New(CategoryRateLimit, errorCode, msgToUser)
}

const (
	ErrCodeStorageFailure  = "storage_failure"
	ErrCodeDatabaseFailure = "database_failure"
	ErrCodeNotFound        = "not_found"
	ErrCodeForbidden       = "forbidden"
)

// Storage and Database never expose backend error text, only a fixed
// message per category. The cause is kept as debug info.

func Storage(cause error) *Error {
	return New(
		CategoryStorage,
		ErrCodeStorageFailure,
		"the photo could not be stored, please try again",
	).SetDebug(cause)
}

func Database(cause error) *Error {
	return New(
		CategoryDatabase,
		ErrCodeDatabaseFailure,
		"something went wrong while saving or loading your data",
	).SetDebug(cause)
}

func NotFound(what string) *Error {
	return Validation(ErrCodeNotFound, what+" was not found").
		SetHttpStatusCode(http.StatusNotFound)
}

func Forbidden() *Error {
	return Auth(ErrCodeForbidden, "you do not have access to this resource").
		SetHttpStatusCode(http.StatusForbidden)
}

// CategoryOf returns the category of the first *Error in err's chain.
// Errors that are not service errors are reported as database failures
// since every other layer classifies its own errors.
func CategoryOf(err error) Category {
	var srvcErr *Error
	if errors.As(err, &srvcErr) {
		return srvcErr.category
	}
	return CategoryDatabase
}

// HasCode reports whether err's chain contains a service error with code.
func HasCode(err error, code string) bool {
	var srvcErr *Error
	if errors.As(err, &srvcErr) {
		return srvcErr.errorCode == code
	}
	return false
}
