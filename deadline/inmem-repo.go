package deadline

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type InMemDeadlineRepo struct {
	mu        sync.RWMutex
	deadlines map[uuid.UUID]Deadline
}

func NewInMemDeadlineRepo() *InMemDeadlineRepo {
	return &InMemDeadlineRepo{deadlines: make(map[uuid.UUID]Deadline)}
}

func (r *InMemDeadlineRepo) StoreDeadline(_ context.Context, d Deadline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.deadlines[d.ID]
	if !ok {
		d.Submissions = slices.Clone(d.Submissions)
		r.deadlines[d.ID] = d
		return nil
	}
	existing.Name = d.Name
	existing.Description = d.Description
	existing.Due = d.Due
	existing.UpdatedAt = d.UpdatedAt
	r.deadlines[d.ID] = existing
	return nil
}

func (r *InMemDeadlineRepo) GetDeadline(_ context.Context, id uuid.UUID) (Deadline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deadlines[id]
	if !ok {
		return Deadline{}, ErrDeadlineNotFound()
	}
	d.Submissions = slices.Clone(d.Submissions)
	return d, nil
}

func (r *InMemDeadlineRepo) ListDeadlines(_ context.Context, ownerUUID uuid.UUID) ([]Deadline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []Deadline
	for _, d := range r.deadlines {
		if d.OwnerUUID == ownerUUID {
			d.Submissions = slices.Clone(d.Submissions)
			res = append(res, d)
		}
	}
	return res, nil
}

// RecordSubmission appends s and points the deadline at it. It mirrors the
// transactional write of the postgres submission repo.
func (r *InMemDeadlineRepo) RecordSubmission(_ context.Context, deadlineID uuid.UUID, s SubmSummary, markCompleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deadlines[deadlineID]
	if !ok {
		return ErrDeadlineNotFound()
	}
	d.Submissions = append(slices.Clone(d.Submissions), s)
	id := s.ID
	d.LastSubmID = &id
	if markCompleted {
		d.Completed = true
	}
	r.deadlines[deadlineID] = d
	return nil
}

// SetSubmStatus changes the status of one submission of a deadline.
func (r *InMemDeadlineRepo) SetSubmStatus(_ context.Context, deadlineID, submID uuid.UUID, status SubmStatus, markCompleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deadlines[deadlineID]
	if !ok {
		return ErrDeadlineNotFound()
	}
	d.Submissions = slices.Clone(d.Submissions)
	for i := range d.Submissions {
		if d.Submissions[i].ID == submID {
			d.Submissions[i].Status = status
		}
	}
	if markCompleted {
		d.Completed = true
	}
	r.deadlines[deadlineID] = d
	return nil
}
