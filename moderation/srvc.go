// Package moderation pairs moderators with users and lets a moderator
// review the proofs of the user assigned to them.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/notif"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/subm"
	"github.com/deadlinr/backend/user"
	"github.com/deadlinr/backend/user/auth"
	"github.com/google/uuid"
)

type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

type Notifier interface {
	Notify(ctx context.Context, recipient uuid.UUID, kind notif.Kind, message string, subjectID *uuid.UUID) error
}

type ModerationSrvc struct {
	rels     RelRepo
	users    UserLookup
	subms    subm.Repo
	notifier Notifier

	Now func() time.Time
}

func NewModerationSrvc(rels RelRepo, users UserLookup, subms subm.Repo, notifier Notifier) *ModerationSrvc {
	return &ModerationSrvc{
		rels:     rels,
		users:    users,
		subms:    subms,
		notifier: notifier,
		Now:      time.Now,
	}
}

// Assign makes the calling moderator the moderator of the user named
// username.
func (s *ModerationSrvc) Assign(ctx context.Context, sess auth.Session, username string) (Relationship, error) {
	if !sess.IsModerator() {
		return Relationship{}, newErrNotModerator()
	}
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return Relationship{}, err
	}
	if target.Role != auth.RoleUser {
		return Relationship{}, newErrTargetNotUser()
	}

	rel := Relationship{
		ModeratorUUID: sess.UserUUID,
		UserUUID:      target.UUID,
		CreatedAt:     s.Now().UTC(),
	}
	if err := s.rels.Insert(ctx, rel); err != nil {
		return Relationship{}, asSrvcErr(err)
	}

	logger.FromContext(ctx).Info("moderator assigned",
		"moderator", rel.ModeratorUUID, "user", rel.UserUUID)
	s.notify(ctx, target.UUID, notif.KindModeratorAdded,
		fmt.Sprintf("%s is now reviewing your proofs", sess.Username), &rel.ModeratorUUID)
	return rel, nil
}

// Revoke ends the caller's relationship, whichever side the caller is on.
// Pending proofs stay pending; a new moderator can review them.
func (s *ModerationSrvc) Revoke(ctx context.Context, sess auth.Session) error {
	rel, ok, err := s.rels.DeleteFor(ctx, sess.UserUUID)
	if err != nil {
		return asSrvcErr(err)
	}
	if !ok {
		return newErrNoRelationship()
	}

	logger.FromContext(ctx).Info("moderator relationship revoked",
		"moderator", rel.ModeratorUUID, "user", rel.UserUUID, "by", sess.UserUUID)
	other := rel.UserUUID
	if other == sess.UserUUID {
		other = rel.ModeratorUUID
	}
	s.notify(ctx, other, notif.KindModeratorRevoked,
		fmt.Sprintf("%s ended the moderation", sess.Username), &sess.UserUUID)
	return nil
}

func (s *ModerationSrvc) ModeratorOf(ctx context.Context, userUUID uuid.UUID) (*uuid.UUID, error) {
	res, err := s.rels.ModeratorOf(ctx, userUUID)
	if err != nil {
		return nil, asSrvcErr(err)
	}
	return res, nil
}

func (s *ModerationSrvc) AssignedUser(ctx context.Context, modUUID uuid.UUID) (*uuid.UUID, error) {
	res, err := s.rels.AssignedUser(ctx, modUUID)
	if err != nil {
		return nil, asSrvcErr(err)
	}
	return res, nil
}

// Review records the caller's decision on a pending proof. Only the current
// moderator of the submitter may review.
func (s *ModerationSrvc) Review(ctx context.Context, sess auth.Session, submID uuid.UUID, decision deadline.SubmStatus) (subm.Submission, error) {
	if decision != deadline.SubmApproved && decision != deadline.SubmInvalid {
		return subm.Submission{}, newErrInvalidDecision()
	}

	sub, err := s.subms.GetSubmission(ctx, submID)
	if err != nil {
		return subm.Submission{}, asSrvcErr(err)
	}
	mod, err := s.rels.ModeratorOf(ctx, sub.SubmitterUUID)
	if err != nil {
		return subm.Submission{}, asSrvcErr(err)
	}
	if mod == nil || *mod != sess.UserUUID {
		return subm.Submission{}, newErrAccessRevoked()
	}

	sub, err = s.subms.ApplyReview(ctx, submID, decision, sess.UserUUID, deadline.Normalize(s.Now()))
	if err != nil {
		return subm.Submission{}, asSrvcErr(err)
	}

	logger.FromContext(ctx).Info("proof reviewed",
		"subm_id", sub.ID, "status", sub.Status, "moderator", sess.UserUUID)
	if decision == deadline.SubmApproved {
		s.notify(ctx, sub.SubmitterUUID, notif.KindProofApproved,
			fmt.Sprintf("%s approved your proof", sess.Username), &sub.ID)
	} else {
		s.notify(ctx, sub.SubmitterUUID, notif.KindProofInvalid,
			fmt.Sprintf("%s marked your proof as invalid", sess.Username), &sub.ID)
	}
	return sub, nil
}

// Queue lists the pending proofs of the caller's user, oldest first.
func (s *ModerationSrvc) Queue(ctx context.Context, sess auth.Session) ([]subm.Submission, error) {
	if !sess.IsModerator() {
		return nil, newErrNotModerator()
	}
	assigned, err := s.rels.AssignedUser(ctx, sess.UserUUID)
	if err != nil {
		return nil, asSrvcErr(err)
	}
	if assigned == nil {
		return []subm.Submission{}, nil
	}
	res, err := s.subms.ListPending(ctx, *assigned)
	if err != nil {
		return nil, asSrvcErr(err)
	}
	return res, nil
}

func (s *ModerationSrvc) notify(ctx context.Context, recipient uuid.UUID, kind notif.Kind, msg string, subject *uuid.UUID) {
	if err := s.notifier.Notify(ctx, recipient, kind, msg, subject); err != nil {
		logger.FromContext(ctx).Error("failed to notify", "recipient", recipient, "kind", kind, "error", err)
	}
}

func asSrvcErr(err error) error {
	var srvcErr *srvcerror.Error
	if errors.As(err, &srvcErr) {
		return err
	}
	return srvcerror.Database(err)
}
