package deadline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/user/auth"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Repo interface {
	StoreDeadline(ctx context.Context, d Deadline) error
	// GetDeadline loads the deadline with its submissions.
	GetDeadline(ctx context.Context, id uuid.UUID) (Deadline, error)
	ListDeadlines(ctx context.Context, ownerUUID uuid.UUID) ([]Deadline, error)
}

// ModeratorLookup returns the moderator assigned to a user, or nil.
type ModeratorLookup func(ctx context.Context, userUUID uuid.UUID) (*uuid.UUID, error)

type DeadlineSrvc struct {
	repo        Repo
	moderatorOf ModeratorLookup

	Now func() time.Time
}

func NewDeadlineSrvc(repo Repo, moderatorOf ModeratorLookup) *DeadlineSrvc {
	return &DeadlineSrvc{
		repo:        repo,
		moderatorOf: moderatorOf,
		Now:         time.Now,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

const (
	maxNameLength        = 100
	maxDescriptionLength = 1000
)

type DeadlineParams struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=1000"`
	Due         time.Time
}

func (p *DeadlineParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Due = Normalize(p.Due)
}

func (p DeadlineParams) validate(now time.Time) error {
	err := validate.Struct(p)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fe := verrs[0]
		switch {
		case fe.Field() == "Name" && fe.Tag() == "required":
			return newErrNameRequired()
		case fe.Field() == "Name":
			return newErrNameTooLong(maxNameLength)
		case fe.Field() == "Description":
			return newErrDescriptionTooLong(maxDescriptionLength)
		}
	}
	if err != nil {
		return fmt.Errorf("validating deadline: %w", err)
	}
	if !p.Due.After(now) {
		return newErrDueNotInFuture()
	}
	return nil
}

func (s *DeadlineSrvc) CreateDeadline(ctx context.Context, sess auth.Session, p DeadlineParams) (Deadline, error) {
	p.normalize()
	now := s.Now()
	if err := p.validate(now); err != nil {
		return Deadline{}, err
	}

	d := Deadline{
		ID:          uuid.New(),
		Name:        p.Name,
		Description: p.Description,
		Due:         p.Due,
		OwnerUUID:   sess.UserUUID,
		CreatedAt:   Normalize(now),
		UpdatedAt:   Normalize(now),
	}
	if err := s.repo.StoreDeadline(ctx, d); err != nil {
		return Deadline{}, asSrvcErr(err)
	}

	logger.FromContext(ctx).Info("deadline created",
		"deadline_id", d.ID, "owner", d.OwnerUUID, "due", d.Due)
	return d, nil
}

// UpdateDeadline replaces name, description and due date. Concurrent edits
// are not detected: the last write wins. Only the owner gets to learn
// whether the new values are valid.
func (s *DeadlineSrvc) UpdateDeadline(ctx context.Context, sess auth.Session, id uuid.UUID, p DeadlineParams) (Deadline, error) {
	d, err := s.repo.GetDeadline(ctx, id)
	if err != nil {
		return Deadline{}, asSrvcErr(err)
	}
	if d.OwnerUUID != sess.UserUUID {
		return Deadline{}, srvcerror.Forbidden()
	}
	if d.Completed {
		return Deadline{}, ErrDeadlineCompleted()
	}

	p.normalize()
	now := s.Now()
	if err := p.validate(now); err != nil {
		return Deadline{}, err
	}

	d.Name = p.Name
	d.Description = p.Description
	d.Due = p.Due
	d.UpdatedAt = Normalize(now)
	if err := s.repo.StoreDeadline(ctx, d); err != nil {
		return Deadline{}, asSrvcErr(err)
	}
	return d, nil
}

// GetDeadline returns a deadline to its owner or to the owner's moderator.
func (s *DeadlineSrvc) GetDeadline(ctx context.Context, sess auth.Session, id uuid.UUID) (Deadline, error) {
	d, err := s.repo.GetDeadline(ctx, id)
	if err != nil {
		return Deadline{}, asSrvcErr(err)
	}
	if err := s.checkCanView(ctx, sess, d.OwnerUUID); err != nil {
		return Deadline{}, err
	}
	return d, nil
}

func (s *DeadlineSrvc) checkCanView(ctx context.Context, sess auth.Session, owner uuid.UUID) error {
	if owner == sess.UserUUID {
		return nil
	}
	if !sess.IsModerator() {
		return srvcerror.Forbidden()
	}
	mod, err := s.moderatorOf(ctx, owner)
	if err != nil {
		return asSrvcErr(err)
	}
	if mod == nil || *mod != sess.UserUUID {
		return srvcerror.Forbidden()
	}
	return nil
}

type View string

const (
	ViewUpcoming View = "upcoming"
	ViewHistory  View = "history"
)

// ParseView accepts "upcoming", "history" or any category name. Empty means
// upcoming.
func ParseView(s string) (View, error) {
	switch s {
	case "", string(ViewUpcoming):
		return ViewUpcoming, nil
	case string(ViewHistory):
		return ViewHistory, nil
	}
	if c, ok := ParseCategory(s); ok {
		return View(c), nil
	}
	return "", newErrUnknownView(s)
}

type ClassifiedDeadline struct {
	Deadline
	Categories CategorySet
}

type ListParams struct {
	View View
	// OwnerUUID lets a moderator list the assigned user's deadlines.
	// uuid.Nil means the caller's own deadlines.
	OwnerUUID uuid.UUID
}

func (s *DeadlineSrvc) ListDeadlines(ctx context.Context, sess auth.Session, p ListParams) ([]ClassifiedDeadline, error) {
	owner := p.OwnerUUID
	if owner == uuid.Nil {
		owner = sess.UserUUID
	}
	if err := s.checkCanView(ctx, sess, owner); err != nil {
		return nil, err
	}

	all, err := s.repo.ListDeadlines(ctx, owner)
	if err != nil {
		return nil, asSrvcErr(err)
	}

	now := s.Now()
	var selected []Deadline
	mode := DisplayHistory
	switch p.View {
	case ViewUpcoming, "":
		selected = Filter(all, now, Upcoming)
		mode = DisplayUpcoming
	case ViewHistory:
		for _, d := range all {
			if !d.Due.After(now) || d.Completed {
				selected = append(selected, d)
			}
		}
	default:
		c, ok := ParseCategory(string(p.View))
		if !ok {
			return nil, newErrUnknownView(string(p.View))
		}
		selected = Filter(all, now, c)
	}

	sorted := SortForDisplay(selected, mode)
	res := make([]ClassifiedDeadline, len(sorted))
	for i, d := range sorted {
		res[i] = ClassifiedDeadline{Deadline: d, Categories: Classify(d, now)}
	}
	return res, nil
}

// Summary counts the caller's deadlines per category.
func (s *DeadlineSrvc) Summary(ctx context.Context, sess auth.Session) (map[Category]int, error) {
	all, err := s.repo.ListDeadlines(ctx, sess.UserUUID)
	if err != nil {
		return nil, asSrvcErr(err)
	}
	return Count(all, s.Now()), nil
}

func asSrvcErr(err error) error {
	var srvcErr *srvcerror.Error
	if errors.As(err, &srvcErr) {
		return err
	}
	return srvcerror.Database(err)
}
