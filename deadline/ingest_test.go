package deadline_test

import (
	"testing"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	got, err := deadline.ParseTimestamp("due", "2024-01-10T14:00:00.1234+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 12, 0, 0, 123_000_000, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())

	_, err = deadline.ParseTimestamp("due", "tomorrow")
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, deadline.ErrCodeInvalidTimestamp))
	assert.Equal(t, srvcerror.CategoryValidation, srvcerror.CategoryOf(err))
}

func TestValidate(t *testing.T) {
	ok := withSubm(newDeadline(due), deadline.SubmApproved, due)
	assert.NoError(t, deadline.Validate(ok))

	noDue := newDeadline(time.Time{})
	assert.True(t, srvcerror.HasCode(deadline.Validate(noDue), deadline.ErrCodeInvalidTimestamp))

	badStatus := withSubm(newDeadline(due), deadline.SubmStatus("lost"), due)
	assert.True(t, srvcerror.HasCode(deadline.Validate(badStatus), deadline.ErrCodeInconsistentDeadline))

	dangling := withSubm(newDeadline(due), deadline.SubmPending, due)
	other := uuid.New()
	dangling.LastSubmID = &other
	assert.True(t, srvcerror.HasCode(deadline.Validate(dangling), deadline.ErrCodeInconsistentDeadline))

	// pointer without the relation loaded is fine
	unloaded := newDeadline(due)
	unloaded.LastSubmID = &other
	assert.NoError(t, deadline.Validate(unloaded))
}
