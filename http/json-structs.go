package http

import (
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/moderation"
	"github.com/deadlinr/backend/notif"
	"github.com/deadlinr/backend/subm"
	"github.com/google/uuid"
)

type SubmSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Deadline struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Due              time.Time           `json:"due"`
	OwnerUUID        string              `json:"owner_uuid"`
	Completed        bool                `json:"completed"`
	LastSubmissionID *string             `json:"last_submission_id"`
	Categories       []deadline.Category `json:"categories"`
	Countdown        deadline.Countdown  `json:"countdown"`
	// Lateness is set for late deadlines, e.g. "2 hours late".
	Lateness    *string       `json:"lateness,omitempty"`
	Submissions []SubmSummary `json:"submissions"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func uuidStrPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mapDeadline(d deadline.Deadline, cats deadline.CategorySet, now time.Time) Deadline {
	res := Deadline{
		ID:               d.ID.String(),
		Name:             d.Name,
		Description:      d.Description,
		Due:              d.Due,
		OwnerUUID:        d.OwnerUUID.String(),
		Completed:        d.Completed,
		LastSubmissionID: uuidStrPtr(d.LastSubmID),
		Categories:       cats.Slice(),
		Countdown:        deadline.FormatCountdown(d.Due, now),
		Submissions:      make([]SubmSummary, len(d.Submissions)),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for i, s := range d.Submissions {
		res.Submissions[i] = SubmSummary{
			ID:          s.ID.String(),
			Status:      string(s.Status),
			SubmittedAt: s.SubmittedAt,
		}
	}
	if rel := d.LastSubm(); rel != nil && cats.Has(deadline.Late) {
		lateness := deadline.FormatLateness(rel.SubmittedAt, d.Due)
		res.Lateness = &lateness
	}
	return res
}

type Submission struct {
	ID            string     `json:"id"`
	DeadlineID    string     `json:"deadline_id"`
	SubmitterUUID string     `json:"submitter_uuid"`
	Status        string     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ReviewedBy    *string    `json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
}

func mapSubm(s subm.Submission) Submission {
	return Submission{
		ID:            s.ID.String(),
		DeadlineID:    s.DeadlineID.String(),
		SubmitterUUID: s.SubmitterUUID.String(),
		Status:        string(s.Status),
		SubmittedAt:   s.SubmittedAt,
		ReviewedBy:    uuidStrPtr(s.ReviewedBy),
		ReviewedAt:    s.ReviewedAt,
	}
}

func mapSubms(ss []subm.Submission) []Submission {
	res := make([]Submission, len(ss))
	for i, s := range ss {
		res[i] = mapSubm(s)
	}
	return res
}

type Relationship struct {
	ModeratorUUID *string `json:"moderator_uuid"`
	UserUUID      *string `json:"user_uuid"`
}

func mapRelationship(rel moderation.Relationship) Relationship {
	return Relationship{
		ModeratorUUID: uuidStrPtr(&rel.ModeratorUUID),
		UserUUID:      uuidStrPtr(&rel.UserUUID),
	}
}

type Notification struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	SubjectID *string    `json:"subject_id"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

func mapNotification(n notif.Notification) Notification {
	return Notification{
		ID:        n.ID.String(),
		Kind:      string(n.Kind),
		Message:   n.Message,
		SubjectID: uuidStrPtr(n.SubjectID),
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
