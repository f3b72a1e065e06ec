package moderation

import (
	"net/http"

	"github.com/deadlinr/backend/srvcerror"
)

const ErrCodeNotModerator = "not_moderator"

func newErrNotModerator() *srvcerror.Error {
	return srvcerror.Auth(
		ErrCodeNotModerator,
		"only moderators can take on a user",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeTargetNotUser = "target_not_user"

func newErrTargetNotUser() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeTargetNotUser,
		"moderators can only be assigned to regular users",
	)
}

const ErrCodeModeratorTaken = "moderator_already_assigned"

func newErrModeratorTaken() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeModeratorTaken,
		"you already moderate a user",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeUserTaken = "user_already_moderated"

func newErrUserTaken() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeUserTaken,
		"this user already has a moderator",
	).SetHttpStatusCode(http.StatusConflict)
}

func newErrNoRelationship() *srvcerror.Error {
	return srvcerror.NotFound("moderator relationship")
}

const ErrCodeAccessRevoked = "moderator_access_revoked"

func newErrAccessRevoked() *srvcerror.Error {
	return srvcerror.Auth(
		ErrCodeAccessRevoked,
		"moderator access revoked",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeInvalidDecision = "invalid_decision"

func newErrInvalidDecision() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidDecision,
		"a review must either approve or invalidate the proof",
	)
}
