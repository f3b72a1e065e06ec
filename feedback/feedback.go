// Package feedback collects free-text feedback and newsletter subscribers.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/user/auth"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxMessageLength = 2000

type Feedback struct {
	ID        uuid.UUID
	UserUUID  *uuid.UUID // nil for anonymous feedback
	Message   string
	CreatedAt time.Time
}

type Subscriber struct {
	Email     string
	CreatedAt time.Time
}

type Repo interface {
	InsertFeedback(ctx context.Context, f Feedback) error
	// InsertSubscriber keeps the existing row when the email is known.
	InsertSubscriber(ctx context.Context, s Subscriber) error
}

const ErrCodeMessageEmpty = "feedback_empty"

func newErrMessageEmpty() *srvcerror.Error {
	return srvcerror.Validation(ErrCodeMessageEmpty, "feedback must not be empty")
}

const ErrCodeMessageTooLong = "feedback_too_long"

func newErrMessageTooLong() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeMessageTooLong,
		fmt.Sprintf("feedback must be at most %d characters", maxMessageLength),
	)
}

const ErrCodeEmailInvalid = "email_invalid"

func newErrEmailInvalid() *srvcerror.Error {
	return srvcerror.Validation(ErrCodeEmailInvalid, "this is not a valid email address")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type FeedbackSrvc struct {
	repo Repo
	Now  func() time.Time
}

func NewFeedbackSrvc(repo Repo) *FeedbackSrvc {
	return &FeedbackSrvc{repo: repo, Now: time.Now}
}

// Submit stores feedback. sess may be nil for visitors who are not logged in.
func (s *FeedbackSrvc) Submit(ctx context.Context, sess *auth.Session, message string) (Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Feedback{}, newErrMessageEmpty()
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return Feedback{}, newErrMessageTooLong()
	}

	f := Feedback{
		ID:        uuid.New(),
		Message:   message,
		CreatedAt: s.Now().UTC(),
	}
	if sess != nil {
		f.UserUUID = &sess.UserUUID
	}
	if err := s.repo.InsertFeedback(ctx, f); err != nil {
		return Feedback{}, srvcerror.Database(err)
	}
	logger.FromContext(ctx).Info("feedback received", "feedback_id", f.ID)
	return f, nil
}

// Subscribe adds email to the subscriber list. Subscribing twice is not an
// error.
func (s *FeedbackSrvc) Subscribe(ctx context.Context, email string) (Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err := validate.Var(email, "required,max=320,email")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Subscriber{}, newErrEmailInvalid()
	}
	if err != nil {
		return Subscriber{}, fmt.Errorf("validating email: %w", err)
	}

	sub := Subscriber{Email: email, CreatedAt: s.Now().UTC()}
	if err := s.repo.InsertSubscriber(ctx, sub); err != nil {
		return Subscriber{}, srvcerror.Database(err)
	}
	return sub, nil
}
