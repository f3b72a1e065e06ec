package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]userRow
}

func newInMemUserRepo() *inMemUserRepo {
	return &inMemUserRepo{users: make(map[uuid.UUID]userRow)}
}

func (r *inMemUserRepo) find(match func(userRow) bool) (userRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return userRow{}, errNoUser
}

func (r *inMemUserRepo) getByUUID(_ context.Context, id uuid.UUID) (userRow, error) {
	return r.find(func(u userRow) bool { return u.UUID == id })
}

func (r *inMemUserRepo) getByUsername(_ context.Context, username string) (userRow, error) {
	return r.find(func(u userRow) bool { return u.Username == username })
}

func (r *inMemUserRepo) getByVerificationToken(_ context.Context, token string) (userRow, error) {
	return r.find(func(u userRow) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *inMemUserRepo) insertUser(_ context.Context, row userRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == row.Username {
			return newErrUsernameExists()
		}
		if u.Email == row.Email {
			return newErrEmailExists()
		}
	}
	r.users[row.UUID] = row
	return nil
}

func (r *inMemUserRepo) markVerified(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errNoUser
	}
	u.EmailVerifiedAt = &at
	u.VerificationToken = nil
	r.users[id] = u
	return nil
}

func (r *inMemUserRepo) taken(_ context.Context, username, email string) (bool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var usernameTaken, emailTaken bool
	for _, u := range r.users {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}
	return usernameTaken, emailTaken, nil
}
