package deadline_test

import (
	"testing"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var due = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func withSubm(d deadline.Deadline, status deadline.SubmStatus, at time.Time) deadline.Deadline {
	s := deadline.SubmSummary{ID: uuid.New(), Status: status, SubmittedAt: at}
	d.Submissions = append(d.Submissions, s)
	d.LastSubmID = &s.ID
	return d
}

func newDeadline(due time.Time) deadline.Deadline {
	return deadline.Deadline{ID: uuid.New(), Name: "essay", Due: due, OwnerUUID: uuid.New()}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		d    deadline.Deadline
		now  time.Time
		want []deadline.Category
	}{
		{
			name: "approved an hour late",
			d:    withSubm(newDeadline(due), deadline.SubmApproved, due.Add(time.Hour)),
			now:  due.Add(2 * time.Hour),
			want: []deadline.Category{deadline.Late},
		},
		{
			name: "nothing submitted after due date",
			d:    newDeadline(due),
			now:  time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
			want: []deadline.Category{deadline.Missed},
		},
		{
			name: "nothing submitted before due date",
			d:    newDeadline(due),
			now:  due.Add(-48 * time.Hour),
			want: []deadline.Category{deadline.Upcoming},
		},
		{
			name: "pending on time",
			d:    withSubm(newDeadline(due), deadline.SubmPending, due.Add(-time.Hour)),
			now:  due.Add(-30 * time.Minute),
			want: []deadline.Category{deadline.Pending},
		},
		{
			name: "pending on time stays pending after due date",
			d:    withSubm(newDeadline(due), deadline.SubmPending, due.Add(-time.Hour)),
			now:  due.Add(time.Hour),
			want: []deadline.Category{deadline.Pending},
		},
		{
			name: "invalid before due date needs resubmission",
			d:    withSubm(newDeadline(due), deadline.SubmInvalid, due.Add(-time.Hour)),
			now:  due.Add(-30 * time.Minute),
			want: []deadline.Category{deadline.Upcoming, deadline.Invalid},
		},
		{
			name: "invalid after due date",
			d:    withSubm(newDeadline(due), deadline.SubmInvalid, due.Add(-time.Hour)),
			now:  due.Add(time.Hour),
			want: []deadline.Category{deadline.Invalid},
		},
		{
			name: "approved on time",
			d:    withSubm(newDeadline(due), deadline.SubmApproved, due.Add(-time.Hour)),
			now:  due.Add(time.Hour),
			want: []deadline.Category{deadline.Completed},
		},
		{
			name: "submitted exactly at due date is on time",
			d:    withSubm(newDeadline(due), deadline.SubmApproved, due),
			now:  due.Add(time.Hour),
			want: []deadline.Category{deadline.Completed},
		},
		{
			name: "pending late",
			d:    withSubm(newDeadline(due), deadline.SubmPending, due.Add(time.Minute)),
			now:  due.Add(time.Hour),
			want: []deadline.Category{deadline.Late},
		},
		{
			name: "invalid late",
			d:    withSubm(newDeadline(due), deadline.SubmInvalid, due.Add(time.Minute)),
			now:  due.Add(time.Hour),
			want: []deadline.Category{deadline.Late, deadline.Invalid},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := deadline.Classify(tc.d, tc.now)
			assert.ElementsMatch(t, tc.want, got.Slice(), "got %s", got)
		})
	}
}

func TestClassifyUsesLastSubmission(t *testing.T) {
	d := withSubm(newDeadline(due), deadline.SubmApproved, due.Add(-2*time.Hour))
	d = withSubm(d, deadline.SubmInvalid, due.Add(-time.Hour))

	got := deadline.Classify(d, due.Add(time.Hour))
	assert.True(t, got.Has(deadline.Invalid))
	assert.False(t, got.Has(deadline.Completed))
}

func TestClassifyCompletedWithoutLoadedSubmissions(t *testing.T) {
	d := newDeadline(due)
	id := uuid.New()
	d.LastSubmID = &id
	d.Completed = true

	got := deadline.Classify(d, due.Add(time.Hour))
	assert.Equal(t, []deadline.Category{deadline.Completed}, got.Slice())
}

func TestMissedAndUpcomingAreExclusive(t *testing.T) {
	d := newDeadline(due)
	for offset := -3 * time.Hour; offset <= 3*time.Hour; offset += 30 * time.Minute {
		got := deadline.Classify(d, due.Add(offset))
		assert.False(t, got.Has(deadline.Missed) && got.Has(deadline.Upcoming), "offset %s", offset)
	}
}

func TestUpcomingRequiresFutureDueDate(t *testing.T) {
	for _, status := range []deadline.SubmStatus{deadline.SubmPending, deadline.SubmApproved, deadline.SubmInvalid} {
		d := withSubm(newDeadline(due), status, due.Add(-time.Hour))
		assert.False(t, deadline.Classify(d, due.Add(time.Second)).Has(deadline.Upcoming), status)
	}
}

func TestLateIffSubmittedAfterDue(t *testing.T) {
	now := due.Add(24 * time.Hour)
	for _, offset := range []time.Duration{-time.Hour, -time.Millisecond, 0, time.Millisecond, time.Hour} {
		for _, status := range []deadline.SubmStatus{deadline.SubmPending, deadline.SubmApproved, deadline.SubmInvalid} {
			d := withSubm(newDeadline(due), status, due.Add(offset))
			got := deadline.Classify(d, now)
			assert.Equal(t, offset > 0, got.Has(deadline.Late), "%s %s", status, offset)
			if got.Has(deadline.Late) {
				assert.False(t, got.Has(deadline.Completed))
				assert.False(t, got.Has(deadline.Pending))
			}
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	var ds []deadline.Deadline
	for _, status := range []deadline.SubmStatus{deadline.SubmPending, deadline.SubmApproved, deadline.SubmInvalid} {
		for _, offset := range []time.Duration{-time.Hour, 0, time.Hour} {
			d := withSubm(newDeadline(due), status, due.Add(offset))
			ds = append(ds, d)
			d.Completed = true
			ds = append(ds, d)
		}
	}
	noSubm := newDeadline(due)
	ds = append(ds, noSubm)
	unloaded := newDeadline(due)
	id := uuid.New()
	unloaded.LastSubmID = &id
	ds = append(ds, unloaded)

	for _, offset := range []time.Duration{-24 * time.Hour, -time.Millisecond, 0, time.Millisecond, 24 * time.Hour} {
		now := due.Add(offset)
		for _, d := range ds {
			first := deadline.Classify(d, now)
			for range 3 {
				assert.Equal(t, first, deadline.Classify(d, now), "%s at %s", first, offset)
			}
		}
	}
}

func TestFilterAndCount(t *testing.T) {
	now := due
	ds := []deadline.Deadline{
		newDeadline(due.Add(time.Hour)),
		newDeadline(due.Add(-time.Hour)),
		withSubm(newDeadline(due.Add(-time.Hour)), deadline.SubmApproved, due.Add(-2*time.Hour)),
	}

	upcoming := deadline.Filter(ds, now, deadline.Upcoming)
	require.Len(t, upcoming, 1)
	assert.Equal(t, ds[0].ID, upcoming[0].ID)

	counts := deadline.Count(ds, now)
	assert.Equal(t, 1, counts[deadline.Upcoming])
	assert.Equal(t, 1, counts[deadline.Missed])
	assert.Equal(t, 1, counts[deadline.Completed])
	assert.Equal(t, 0, counts[deadline.Late])
	assert.Len(t, counts, len(deadline.AllCategories))
}

func TestSortForDisplay(t *testing.T) {
	a := newDeadline(due)
	b := newDeadline(due.Add(time.Hour))
	c := newDeadline(due.Add(-time.Hour))
	d := newDeadline(due)
	in := []deadline.Deadline{a, b, c, d}

	asc := deadline.SortForDisplay(in, deadline.DisplayUpcoming)
	assert.Equal(t, c.ID, asc[0].ID)
	assert.Equal(t, b.ID, asc[3].ID)

	desc := deadline.SortForDisplay(in, deadline.DisplayHistory)
	assert.Equal(t, b.ID, desc[0].ID)
	assert.Equal(t, c.ID, desc[3].ID)

	// ties are broken the same way regardless of input order
	again := deadline.SortForDisplay([]deadline.Deadline{d, c, b, a}, deadline.DisplayUpcoming)
	assert.Equal(t, asc, again)

	// input untouched
	assert.Equal(t, a.ID, in[0].ID)
}

func TestCategorySet(t *testing.T) {
	var s deadline.CategorySet
	assert.True(t, s.Empty())
	s = s.With(deadline.Late).With(deadline.Invalid)
	assert.Equal(t, "{late,invalid}", s.String())
	assert.False(t, s.Has(deadline.Completed))

	c, ok := deadline.ParseCategory("missed")
	assert.True(t, ok)
	assert.Equal(t, deadline.Missed, c)
	_, ok = deadline.ParseCategory("overdue")
	assert.False(t, ok)
}
