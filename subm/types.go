package subm

import (
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/google/uuid"
)

type Submission struct {
	ID            uuid.UUID
	DeadlineID    uuid.UUID
	SubmitterUUID uuid.UUID

	// ImagePath and ThumbPath are object storage keys, not URLs.
	ImagePath string
	ThumbPath string

	Status      deadline.SubmStatus
	SubmittedAt time.Time // UTC

	ReviewedBy *uuid.UUID
	ReviewedAt *time.Time
}

func (s Submission) Summary() deadline.SubmSummary {
	return deadline.SubmSummary{
		ID:          s.ID,
		Status:      s.Status,
		SubmittedAt: s.SubmittedAt,
	}
}
