package notif

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindProofPending     Kind = "proof_pending"
	KindProofApproved    Kind = "proof_approved"
	KindProofInvalid     Kind = "proof_invalid"
	KindModeratorAdded   Kind = "moderator_added"
	KindModeratorRevoked Kind = "moderator_revoked"
)

type Notification struct {
	ID            uuid.UUID
	RecipientUUID uuid.UUID
	Kind          Kind
	Message       string
	// SubjectID is the submission or user the notification is about.
	SubjectID *uuid.UUID
	CreatedAt time.Time
	ReadAt    *time.Time
}
