package subm

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/google/uuid"
)

// InMemSubmRepo keeps submissions in memory and mirrors every write into the
// in-memory deadline repo, like the postgres transaction does.
type InMemSubmRepo struct {
	mu        sync.Mutex
	subms     map[uuid.UUID]Submission
	deadlines *deadline.InMemDeadlineRepo
}

func NewInMemSubmRepo(deadlines *deadline.InMemDeadlineRepo) *InMemSubmRepo {
	return &InMemSubmRepo{
		subms:     make(map[uuid.UUID]Submission),
		deadlines: deadlines,
	}
}

func (r *InMemSubmRepo) CommitUpload(ctx context.Context, s Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.deadlines.GetDeadline(ctx, s.DeadlineID)
	if err != nil {
		return err
	}
	if d.Completed {
		return deadline.ErrDeadlineCompleted()
	}
	err = r.deadlines.RecordSubmission(ctx, s.DeadlineID, s.Summary(), s.Status == deadline.SubmApproved)
	if err != nil {
		return err
	}
	r.subms[s.ID] = s
	return nil
}

func (r *InMemSubmRepo) GetSubmission(_ context.Context, id uuid.UUID) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subms[id]
	if !ok {
		return Submission{}, ErrSubmNotFound()
	}
	return s, nil
}

func (r *InMemSubmRepo) filter(match func(Submission) bool) []Submission {
	var res []Submission
	for _, s := range r.subms {
		if match(s) {
			res = append(res, s)
		}
	}
	return res
}

func bySubmittedAt(a, b Submission) int {
	if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func (r *InMemSubmRepo) ListSubmissions(_ context.Context, deadlineID uuid.UUID) ([]Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.filter(func(s Submission) bool { return s.DeadlineID == deadlineID })
	slices.SortFunc(res, func(a, b Submission) int { return bySubmittedAt(b, a) })
	return res, nil
}

func (r *InMemSubmRepo) ListPending(_ context.Context, submitter uuid.UUID) ([]Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.filter(func(s Submission) bool {
		return s.SubmitterUUID == submitter && s.Status == deadline.SubmPending
	})
	slices.SortFunc(res, bySubmittedAt)
	return res, nil
}

func (r *InMemSubmRepo) ApplyReview(ctx context.Context, id uuid.UUID, status deadline.SubmStatus, reviewer uuid.UUID, at time.Time) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subms[id]
	if !ok {
		return Submission{}, ErrSubmNotFound()
	}
	if s.Status != deadline.SubmPending {
		return Submission{}, ErrSubmNotPending()
	}
	err := r.deadlines.SetSubmStatus(ctx, s.DeadlineID, s.ID, status, status == deadline.SubmApproved)
	if err != nil {
		return Submission{}, err
	}
	s.Status = status
	s.ReviewedBy = &reviewer
	s.ReviewedAt = &at
	r.subms[id] = s
	return s, nil
}
