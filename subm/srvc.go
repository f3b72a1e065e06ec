// Package subm handles proof-of-completion photos: the upload workflow and
// read access for owners and their moderators.
package subm

import (
	"context"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/notif"
	decorator "github.com/deadlinr/backend/srvccqs"
	"github.com/deadlinr/backend/user/auth"
	"github.com/google/uuid"
)

type DeadlineGetter interface {
	// GetDeadline fails unless sess may view the deadline.
	GetDeadline(ctx context.Context, sess auth.Session, id uuid.UUID) (deadline.Deadline, error)
}

type AttemptLimiter interface {
	Allow(ctx context.Context, user uuid.UUID) error
}

type Notifier interface {
	Notify(ctx context.Context, recipient uuid.UUID, kind notif.Kind, message string, subjectID *uuid.UUID) error
}

type SubmSrvc struct {
	repo      Repo
	deadlines DeadlineGetter
	upload    UploadProofCmd

	Now func() time.Time
}

func NewSubmSrvc(
	repo Repo,
	deadlines DeadlineGetter,
	limiter AttemptLimiter,
	moderatorOf deadline.ModeratorLookup,
	store ObjectStore,
	notifier Notifier,
) *SubmSrvc {
	s := &SubmSrvc{
		repo:      repo,
		deadlines: deadlines,
		Now:       time.Now,
	}
	s.upload = decorator.WithCmdLogging[UploadProofParams]("upload_proof", NewUploadProofCmd(
		limiter.Allow,
		deadlines.GetDeadline,
		moderatorOf,
		store,
		repo.CommitUpload,
		notifier.Notify,
		func() time.Time { return s.Now() },
	))
	return s
}

// UploadProof stores a proof photo for the caller's deadline and returns
// the created submission. The result is not read back after the commit, so
// a failing read cannot turn a stored upload into an error.
func (s *SubmSrvc) UploadProof(ctx context.Context, sess auth.Session, deadlineID uuid.UUID, image []byte) (Submission, error) {
	var created Submission
	err := s.upload.Handle(ctx, UploadProofParams{
		SubmID:     uuid.New(),
		Session:    sess,
		DeadlineID: deadlineID,
		Image:      image,
		Created:    &created,
	})
	if err != nil {
		return Submission{}, err
	}
	return created, nil
}

func (s *SubmSrvc) ListSubmissions(ctx context.Context, sess auth.Session, deadlineID uuid.UUID) ([]Submission, error) {
	if _, err := s.deadlines.GetDeadline(ctx, sess, deadlineID); err != nil {
		return nil, err
	}
	res, err := s.repo.ListSubmissions(ctx, deadlineID)
	if err != nil {
		return nil, asSrvcErr(err)
	}
	return res, nil
}

func (s *SubmSrvc) GetSubmission(ctx context.Context, sess auth.Session, id uuid.UUID) (Submission, error) {
	res, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, asSrvcErr(err)
	}
	if _, err := s.deadlines.GetDeadline(ctx, sess, res.DeadlineID); err != nil {
		return Submission{}, err
	}
	return res, nil
}
