package deadline

import (
	"time"

	"github.com/google/uuid"
)

type SubmStatus string

const (
	SubmPending  SubmStatus = "pending"
	SubmApproved SubmStatus = "approved"
	SubmInvalid  SubmStatus = "invalid"
)

func (s SubmStatus) Valid() bool {
	switch s {
	case SubmPending, SubmApproved, SubmInvalid:
		return true
	}
	return false
}

// SubmSummary is the part of a submission the classifier looks at.
type SubmSummary struct {
	ID          uuid.UUID
	Status      SubmStatus
	SubmittedAt time.Time
}

type Deadline struct {
	ID          uuid.UUID
	Name        string
	Description string
	Due         time.Time // UTC
	OwnerUUID   uuid.UUID
	Completed   bool

	// LastSubmID points at the most recent submission. It can be set while
	// Submissions is still empty when the relation was not loaded.
	LastSubmID  *uuid.UUID
	Submissions []SubmSummary

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSubmission reports whether any submission is known to exist.
func (d Deadline) HasSubmission() bool {
	return d.LastSubmID != nil || len(d.Submissions) > 0
}

// LastSubm returns the submission referenced by LastSubmID, or nil when the
// pointer is unset or the relation is not loaded.
func (d Deadline) LastSubm() *SubmSummary {
	if d.LastSubmID == nil {
		return nil
	}
	for i := range d.Submissions {
		if d.Submissions[i].ID == *d.LastSubmID {
			return &d.Submissions[i]
		}
	}
	return nil
}
