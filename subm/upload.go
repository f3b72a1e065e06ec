package subm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/notif"
	decorator "github.com/deadlinr/backend/srvccqs"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/user/auth"
	"github.com/google/uuid"
)

// ObjectStore holds the proof photos. Implemented by s3bucket.S3Bucket.
type ObjectStore interface {
	Upload(ctx context.Context, key string, content []byte, mediaType string) error
	Delete(ctx context.Context, key string) error
}

type UploadProofCmd decorator.CmdHandler[UploadProofParams]

type UploadProofParams struct {
	SubmID     uuid.UUID
	Session    auth.Session
	DeadlineID uuid.UUID
	Image      []byte

	// Created receives the submission once the upload is committed.
	Created *Submission
}

func NewUploadProofCmd(
	allowAttempt func(ctx context.Context, user uuid.UUID) error,
	getDeadline func(ctx context.Context, sess auth.Session, id uuid.UUID) (deadline.Deadline, error),
	moderatorOf func(ctx context.Context, user uuid.UUID) (*uuid.UUID, error),
	store ObjectStore,
	commitUpload func(ctx context.Context, s Submission) error,
	notify func(ctx context.Context, recipient uuid.UUID, kind notif.Kind, msg string, subject *uuid.UUID) error,
	now func() time.Time,
) UploadProofCmd {
	return uploadProofHandler{
		allowAttempt: allowAttempt,
		getDeadline:  getDeadline,
		moderatorOf:  moderatorOf,
		store:        store,
		commitUpload: commitUpload,
		notify:       notify,
		now:          now,
	}
}

type uploadProofHandler struct {
	allowAttempt func(ctx context.Context, user uuid.UUID) error
	getDeadline  func(ctx context.Context, sess auth.Session, id uuid.UUID) (deadline.Deadline, error)
	moderatorOf  func(ctx context.Context, user uuid.UUID) (*uuid.UUID, error)
	store        ObjectStore
	commitUpload func(ctx context.Context, s Submission) error

	notify func(ctx context.Context, recipient uuid.UUID, kind notif.Kind, msg string, subject *uuid.UUID) error
	now    func() time.Time
}

func (h uploadProofHandler) Handle(ctx context.Context, p UploadProofParams) error {
	sess := p.Session
	log := logger.FromContext(ctx).With("user", sess.UserUUID, "deadline_id", p.DeadlineID)

	// every attempt counts, including the ones rejected below
	if err := h.allowAttempt(ctx, sess.UserUUID); err != nil {
		return err
	}

	mediaType, ext, err := checkImage(p.Image)
	if err != nil {
		return err
	}

	d, err := h.getDeadline(ctx, sess, p.DeadlineID)
	if err != nil {
		return err
	}
	if d.OwnerUUID != sess.UserUUID {
		return srvcerror.Forbidden()
	}
	if d.Completed {
		return deadline.ErrDeadlineCompleted()
	}

	mod, err := h.moderatorOf(ctx, sess.UserUUID)
	if err != nil {
		return asSrvcErr(err)
	}

	thumb, err := makeThumbnail(p.Image, mediaType, ThumbWidth)
	if err != nil {
		log.Info("proof photo could not be decoded", "error", err)
		var srvcErr *srvcerror.Error
		if errors.As(err, &srvcErr) {
			return err
		}
		return newErrImageCorrupt()
	}

	s := Submission{
		ID:            p.SubmID,
		DeadlineID:    d.ID,
		SubmitterUUID: sess.UserUUID,
		Status:        deadline.SubmPending,
		SubmittedAt:   deadline.Normalize(h.now()),
	}
	if mod == nil {
		s.Status = deadline.SubmApproved
	}
	s.ImagePath, s.ThumbPath = objectKeys(d.OwnerUUID, d.ID, s.ID, ext)

	if err := h.store.Upload(ctx, s.ImagePath, p.Image, mediaType); err != nil {
		return srvcerror.Storage(fmt.Errorf("failed to upload proof: %w", err))
	}
	if err := h.store.Upload(ctx, s.ThumbPath, thumb, "image/jpeg"); err != nil {
		h.compensate(ctx, s.ImagePath)
		return srvcerror.Storage(fmt.Errorf("failed to upload thumbnail: %w", err))
	}

	if err := h.commitUpload(ctx, s); err != nil {
		h.compensate(ctx, s.ImagePath, s.ThumbPath)
		return asSrvcErr(err)
	}

	log.Info("proof submitted", "subm_id", s.ID, "status", s.Status)
	if p.Created != nil {
		*p.Created = s
	}

	if s.Status == deadline.SubmPending {
		msg := fmt.Sprintf("%s submitted a proof for %q", sess.Username, d.Name)
		err = h.notify(ctx, *mod, notif.KindProofPending, msg, &s.ID)
	} else {
		msg := fmt.Sprintf("%q is completed", d.Name)
		err = h.notify(ctx, sess.UserUUID, notif.KindProofApproved, msg, &s.ID)
	}
	if err != nil {
		log.Error("failed to notify about proof", "subm_id", s.ID, "error", err)
	}
	return nil
}

// compensate removes objects of an upload that was not committed. Failures
// leave orphaned objects behind and are only logged.
func (h uploadProofHandler) compensate(ctx context.Context, keys ...string) {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx)
	for _, key := range keys {
		if err := h.store.Delete(ctx, key); err != nil {
			log.Error("failed to delete uncommitted proof object", "key", key, "error", err)
		}
	}
}

func asSrvcErr(err error) error {
	var srvcErr *srvcerror.Error
	if errors.As(err, &srvcErr) {
		return err
	}
	return srvcerror.Database(err)
}
