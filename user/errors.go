package user

import (
	"fmt"
	"net/http"

	"github.com/deadlinr/backend/srvcerror"
)

const ErrCodeUsernameTooShort = "username_too_short"

func newErrUsernameTooShort(minLength int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeUsernameTooShort,
		fmt.Sprintf("username must be at least %d characters long", minLength),
	)
}

const ErrCodeUsernameTooLong = "username_too_long"

func newErrUsernameTooLong(maxLength int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeUsernameTooLong,
		fmt.Sprintf("username must be at most %d characters long", maxLength),
	)
}

const ErrCodeUsernameExists = "username_exists"

func newErrUsernameExists() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeUsernameExists,
		"this username is already taken",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeEmailExists = "email_exists"

func newErrEmailExists() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeEmailExists,
		"an account with this email already exists",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeEmailInvalid = "email_invalid"

func newErrEmailInvalid() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeEmailInvalid,
		"email address is not valid",
	)
}

const ErrCodeEmailTooLong = "email_too_long"

func newErrEmailTooLong(maxLength int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeEmailTooLong,
		fmt.Sprintf("email must be at most %d characters long", maxLength),
	)
}

const ErrCodePasswordTooShort = "password_too_short"

func newErrPasswordTooShort(minLength int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodePasswordTooShort,
		fmt.Sprintf("password must be at least %d characters long", minLength),
	)
}

const ErrCodePasswordTooLong = "password_too_long"

func newErrPasswordTooLong() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodePasswordTooLong,
		"password is unreasonably long",
	)
}

const ErrCodeInvalidRole = "invalid_role"

func newErrInvalidRole() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidRole,
		"role must be either user or moderator",
	)
}

const ErrCodeInvalidCredentials = "invalid_credentials"

func newErrInvalidCredentials() *srvcerror.Error {
	return srvcerror.Auth(
		ErrCodeInvalidCredentials,
		"username or password is incorrect",
	)
}

const ErrCodeEmailNotVerified = "email_not_verified"

func newErrEmailNotVerified() *srvcerror.Error {
	return srvcerror.Auth(
		ErrCodeEmailNotVerified,
		"please verify your email address before logging in",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeInvalidVerificationToken = "invalid_verification_token"

func newErrInvalidVerificationToken() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidVerificationToken,
		"this verification link is invalid or was already used",
	)
}

func ErrUserNotFound() *srvcerror.Error {
	return srvcerror.NotFound("user")
}
