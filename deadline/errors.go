package deadline

import (
	"fmt"
	"net/http"

	"github.com/deadlinr/backend/srvcerror"
)

const ErrCodeNameRequired = "name_required"

func newErrNameRequired() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeNameRequired,
		"deadline name must not be empty",
	)
}

const ErrCodeNameTooLong = "name_too_long"

func newErrNameTooLong(maxLength int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeNameTooLong,
		fmt.Sprintf("deadline name must be at most %d characters", maxLength),
	)
}

const ErrCodeDescriptionTooLong = "description_too_long"

func newErrDescriptionTooLong(maxLength int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeDescriptionTooLong,
		fmt.Sprintf("description must be at most %d characters", maxLength),
	)
}

const ErrCodeDueNotInFuture = "due_not_in_future"

func newErrDueNotInFuture() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeDueNotInFuture,
		"the due date must be in the future",
	)
}

const ErrCodeDeadlineCompleted = "deadline_completed"

func ErrDeadlineCompleted() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeDeadlineCompleted,
		"this deadline is already completed",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeUnknownView = "unknown_view"

func newErrUnknownView(view string) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeUnknownView,
		fmt.Sprintf("unknown list view %q", view),
	)
}

func ErrDeadlineNotFound() *srvcerror.Error {
	return srvcerror.NotFound("deadline")
}
