package subm_test

import (
	"context"
	"testing"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/pgtest"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/subm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgSubmRepo(t *testing.T) {
	pool := pgtest.NewDB(t)
	ctx := context.Background()
	deadlines := deadline.NewPgDeadlineRepo(pool)
	repo := subm.NewPgSubmRepo(pool)

	owner, mod := uuid.New(), uuid.New()
	pgtest.InsertUser(t, pool, owner, "anna", "user")
	pgtest.InsertUser(t, pool, mod, "maris", "moderator")

	due := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	d := deadline.Deadline{
		ID:        uuid.New(),
		Name:      "run 5k",
		Due:       due,
		OwnerUUID: owner,
		CreatedAt: srvcNow,
		UpdatedAt: srvcNow,
	}
	require.NoError(t, deadlines.StoreDeadline(ctx, d))

	newSubm := func(status deadline.SubmStatus, at time.Time) subm.Submission {
		return subm.Submission{
			ID:            uuid.New(),
			DeadlineID:    d.ID,
			SubmitterUUID: owner,
			ImagePath:     "proofs/a.png",
			ThumbPath:     "proofs/a_thumb.jpg",
			Status:        status,
			SubmittedAt:   at,
		}
	}

	first := newSubm(deadline.SubmPending, srvcNow)
	require.NoError(t, repo.CommitUpload(ctx, first))
	second := newSubm(deadline.SubmPending, srvcNow.Add(time.Minute))
	require.NoError(t, repo.CommitUpload(ctx, second))

	got, err := deadlines.GetDeadline(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSubmID)
	assert.Equal(t, second.ID, *got.LastSubmID)
	assert.Len(t, got.Submissions, 2)
	assert.False(t, got.Completed)

	pending, err := repo.ListPending(ctx, owner)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)

	list, err := repo.ListSubmissions(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	reviewedAt := srvcNow.Add(time.Hour)
	s, err := repo.ApplyReview(ctx, first.ID, deadline.SubmInvalid, mod, reviewedAt)
	require.NoError(t, err)
	assert.Equal(t, deadline.SubmInvalid, s.Status)
	require.NotNil(t, s.ReviewedBy)
	assert.Equal(t, mod, *s.ReviewedBy)

	_, err = repo.ApplyReview(ctx, first.ID, deadline.SubmApproved, mod, reviewedAt)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmNotPending))
	_, err = repo.ApplyReview(ctx, uuid.New(), deadline.SubmApproved, mod, reviewedAt)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))

	_, err = repo.ApplyReview(ctx, second.ID, deadline.SubmApproved, mod, reviewedAt)
	require.NoError(t, err)
	got, err = deadlines.GetDeadline(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	// a completed deadline takes no more uploads
	err = repo.CommitUpload(ctx, newSubm(deadline.SubmApproved, srvcNow.Add(2*time.Hour)))
	assert.True(t, srvcerror.HasCode(err, deadline.ErrCodeDeadlineCompleted))

	_, err = repo.GetSubmission(ctx, uuid.New())
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}
