// Package notif stores in-app notifications and forwards them to the push
// fan-out queue.
package notif

import (
	"context"
	"time"

	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/user/auth"
	"github.com/google/uuid"
)

const listLimit = 100

type NotifSrvc struct {
	repo Repo
	// pub is nil when no queue is configured.
	pub Publisher

	Now func() time.Time
}

func NewNotifSrvc(repo Repo, pub Publisher) *NotifSrvc {
	return &NotifSrvc{repo: repo, pub: pub, Now: time.Now}
}

// Notify stores a notification for recipient and publishes it. A failed
// publish is logged; the stored notification is still shown in the app.
func (s *NotifSrvc) Notify(ctx context.Context, recipient uuid.UUID, kind Kind, message string, subjectID *uuid.UUID) error {
	n := Notification{
		ID:            uuid.New(),
		RecipientUUID: recipient,
		Kind:          kind,
		Message:       message,
		SubjectID:     subjectID,
		CreatedAt:     s.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return srvcerror.Database(err)
	}

	log := logger.FromContext(ctx)
	if s.pub == nil {
		log.Debug("no notification queue configured", "notification_id", n.ID)
		return nil
	}
	if err := s.pub.Publish(ctx, eventOf(n)); err != nil {
		log.Error("failed to publish notification", "notification_id", n.ID, "error", err)
	}
	return nil
}

func (s *NotifSrvc) List(ctx context.Context, sess auth.Session) ([]Notification, error) {
	res, err := s.repo.ListFor(ctx, sess.UserUUID, listLimit)
	if err != nil {
		return nil, srvcerror.Database(err)
	}
	return res, nil
}

func (s *NotifSrvc) MarkRead(ctx context.Context, sess auth.Session, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, sess.UserUUID, id, s.Now().UTC())
	if err != nil {
		return srvcerror.Database(err)
	}
	if !ok {
		return srvcerror.NotFound("notification")
	}
	return nil
}
