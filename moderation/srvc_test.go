package moderation_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/mail"
	"github.com/deadlinr/backend/moderation"
	"github.com/deadlinr/backend/notif"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/subm"
	"github.com/deadlinr/backend/user"
	"github.com/deadlinr/backend/user/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var srvcNow = time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC)

type fixture struct {
	srvc      *moderation.ModerationSrvc
	deadlines *deadline.InMemDeadlineRepo
	subms     *subm.InMemSubmRepo
	notifs    *notif.NotifSrvc

	user  auth.Session
	mod   auth.Session
	mod2  auth.Session
	other auth.Session
}

func register(t *testing.T, users *user.UserSrvc, username string, role auth.Role) auth.Session {
	t.Helper()
	u, err := users.Register(context.Background(), user.RegisterParams{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
		Role:     role,
	})
	require.NoError(t, err)
	return auth.Session{UserUUID: u.UUID, Username: u.Username, Role: u.Role}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := user.NewInMemUserSrvc(mail.NewConsoleSender(slog.New(slog.NewTextHandler(io.Discard, nil))))
	f := &fixture{
		deadlines: deadline.NewInMemDeadlineRepo(),
		notifs:    notif.NewNotifSrvc(notif.NewInMemRepo(), nil),
		user:      register(t, users, "anna", auth.RoleUser),
		mod:       register(t, users, "maris", auth.RoleModerator),
		mod2:      register(t, users, "liga", auth.RoleModerator),
		other:     register(t, users, "janis", auth.RoleUser),
	}
	f.subms = subm.NewInMemSubmRepo(f.deadlines)
	f.srvc = moderation.NewModerationSrvc(moderation.NewInMemRelRepo(), users, f.subms, f.notifs)
	f.srvc.Now = func() time.Time { return srvcNow }
	return f
}

// addPending stores a deadline of the user with one pending proof.
func (f *fixture) addPending(t *testing.T, submittedAt time.Time) subm.Submission {
	t.Helper()
	ctx := context.Background()
	d := deadline.Deadline{
		ID:        uuid.New(),
		Name:      "read a book",
		Due:       srvcNow.Add(24 * time.Hour),
		OwnerUUID: f.user.UserUUID,
	}
	require.NoError(t, f.deadlines.StoreDeadline(ctx, d))
	s := subm.Submission{
		ID:            uuid.New(),
		DeadlineID:    d.ID,
		SubmitterUUID: f.user.UserUUID,
		ImagePath:     "proofs/x.jpg",
		ThumbPath:     "proofs/x_thumb.jpg",
		Status:        deadline.SubmPending,
		SubmittedAt:   submittedAt,
	}
	require.NoError(t, f.subms.CommitUpload(ctx, s))
	return s
}

func TestAssignAndRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rel, err := f.srvc.Assign(ctx, f.mod, "anna")
	require.NoError(t, err)
	assert.Equal(t, f.mod.UserUUID, rel.ModeratorUUID)
	assert.Equal(t, f.user.UserUUID, rel.UserUUID)

	mod, err := f.srvc.ModeratorOf(ctx, f.user.UserUUID)
	require.NoError(t, err)
	require.NotNil(t, mod)
	assert.Equal(t, f.mod.UserUUID, *mod)

	assigned, err := f.srvc.AssignedUser(ctx, f.mod.UserUUID)
	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, f.user.UserUUID, *assigned)

	ns, err := f.notifs.List(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, notif.KindModeratorAdded, ns[0].Kind)

	// the user side can end it too
	require.NoError(t, f.srvc.Revoke(ctx, f.user))
	mod, err = f.srvc.ModeratorOf(ctx, f.user.UserUUID)
	require.NoError(t, err)
	assert.Nil(t, mod)

	ns, err = f.notifs.List(ctx, f.mod)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, notif.KindModeratorRevoked, ns[0].Kind)

	err = f.srvc.Revoke(ctx, f.user)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}

func TestAssignRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.srvc.Assign(ctx, f.other, "anna")
	assert.True(t, srvcerror.HasCode(err, moderation.ErrCodeNotModerator))

	_, err = f.srvc.Assign(ctx, f.mod, "liga")
	assert.True(t, srvcerror.HasCode(err, moderation.ErrCodeTargetNotUser))

	_, err = f.srvc.Assign(ctx, f.mod, "nobody")
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))

	_, err = f.srvc.Assign(ctx, f.mod, "anna")
	require.NoError(t, err)

	_, err = f.srvc.Assign(ctx, f.mod2, "anna")
	assert.True(t, srvcerror.HasCode(err, moderation.ErrCodeUserTaken))

	_, err = f.srvc.Assign(ctx, f.mod, "janis")
	assert.True(t, srvcerror.HasCode(err, moderation.ErrCodeModeratorTaken))
}

func TestReviewApprovesAndCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.srvc.Assign(ctx, f.mod, "anna")
	require.NoError(t, err)
	s := f.addPending(t, srvcNow.Add(-time.Hour))

	got, err := f.srvc.Review(ctx, f.mod, s.ID, deadline.SubmApproved)
	require.NoError(t, err)
	assert.Equal(t, deadline.SubmApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, f.mod.UserUUID, *got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt)
	assert.Equal(t, srvcNow, *got.ReviewedAt)

	d, err := f.deadlines.GetDeadline(ctx, s.DeadlineID)
	require.NoError(t, err)
	assert.True(t, d.Completed)
	assert.Equal(t, []deadline.Category{deadline.Completed}, deadline.Classify(d, srvcNow).Slice())

	ns, err := f.notifs.List(ctx, f.user)
	require.NoError(t, err)
	var kinds []notif.Kind
	for _, n := range ns {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, notif.KindProofApproved)

	// approved is terminal
	_, err = f.srvc.Review(ctx, f.mod, s.ID, deadline.SubmInvalid)
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmNotPending))
}

func TestReviewInvalidReopensDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.srvc.Assign(ctx, f.mod, "anna")
	require.NoError(t, err)
	s := f.addPending(t, srvcNow.Add(-time.Hour))

	_, err = f.srvc.Review(ctx, f.mod, s.ID, deadline.SubmInvalid)
	require.NoError(t, err)

	d, err := f.deadlines.GetDeadline(ctx, s.DeadlineID)
	require.NoError(t, err)
	assert.False(t, d.Completed)
	cats := deadline.Classify(d, srvcNow)
	assert.True(t, cats.Has(deadline.Invalid))
	assert.True(t, cats.Has(deadline.Upcoming))
}

func TestReviewByRevokedModerator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.srvc.Assign(ctx, f.mod, "anna")
	require.NoError(t, err)
	s := f.addPending(t, srvcNow.Add(-time.Hour))

	require.NoError(t, f.srvc.Revoke(ctx, f.mod))

	_, err = f.srvc.Review(ctx, f.mod, s.ID, deadline.SubmApproved)
	require.Error(t, err)
	assert.Equal(t, srvcerror.CategoryAuth, srvcerror.CategoryOf(err))
	assert.Equal(t, "moderator access revoked", err.Error())

	// a different moderator never had access
	_, err = f.srvc.Review(ctx, f.mod2, s.ID, deadline.SubmApproved)
	assert.True(t, srvcerror.HasCode(err, moderation.ErrCodeAccessRevoked))

	got, err := f.subms.GetSubmission(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, deadline.SubmPending, got.Status)
}

func TestReviewRejectsPendingDecision(t *testing.T) {
	f := newFixture(t)
	_, err := f.srvc.Review(context.Background(), f.mod, uuid.New(), deadline.SubmPending)
	assert.True(t, srvcerror.HasCode(err, moderation.ErrCodeInvalidDecision))
}

func TestQueueOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.srvc.Queue(ctx, f.mod)
	require.NoError(t, err)
	assert.Empty(t, q)

	_, err = f.srvc.Assign(ctx, f.mod, "anna")
	require.NoError(t, err)
	newer := f.addPending(t, srvcNow.Add(-time.Minute))
	older := f.addPending(t, srvcNow.Add(-time.Hour))
	reviewed := f.addPending(t, srvcNow.Add(-2*time.Hour))
	_, err = f.srvc.Review(ctx, f.mod, reviewed.ID, deadline.SubmInvalid)
	require.NoError(t, err)

	q, err = f.srvc.Queue(ctx, f.mod)
	require.NoError(t, err)
	require.Len(t, q, 2)
	assert.Equal(t, older.ID, q[0].ID)
	assert.Equal(t, newer.ID, q[1].ID)

	_, err = f.srvc.Queue(ctx, f.user)
	assert.True(t, srvcerror.HasCode(err, moderation.ErrCodeNotModerator))
}
