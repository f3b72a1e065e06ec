package deadline

import (
	"fmt"
	"time"

	"github.com/deadlinr/backend/srvcerror"
)

const ErrCodeInvalidTimestamp = "invalid_timestamp"

func newErrInvalidTimestamp(field string) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInvalidTimestamp,
		fmt.Sprintf("%s is not a valid date and time", field),
	)
}

const ErrCodeInconsistentDeadline = "inconsistent_deadline"

func newErrInconsistentDeadline(reason string) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeInconsistentDeadline,
		"deadline data is inconsistent: "+reason,
	)
}

// Normalize brings a timestamp to the resolution the classifier compares
// at: UTC, whole milliseconds.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ParseTimestamp parses an RFC 3339 timestamp (fractional seconds optional)
// and normalizes it. field names the input in the error message.
func ParseTimestamp(field string, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, newErrInvalidTimestamp(field).SetDebug(err)
	}
	return Normalize(t), nil
}

// Validate checks a deadline before it reaches the classifier.
func Validate(d Deadline) error {
	if d.Due.IsZero() {
		return newErrInvalidTimestamp("due date")
	}
	for _, s := range d.Submissions {
		if !s.Status.Valid() {
			return newErrInconsistentDeadline(
				fmt.Sprintf("unknown submission status %q", s.Status))
		}
		if s.SubmittedAt.IsZero() {
			return newErrInvalidTimestamp("submission date")
		}
	}
	if d.LastSubmID != nil && len(d.Submissions) > 0 {
		matches := 0
		for _, s := range d.Submissions {
			if s.ID == *d.LastSubmID {
				matches++
			}
		}
		if matches != 1 {
			return newErrInconsistentDeadline(
				fmt.Sprintf("last submission matches %d loaded submissions", matches))
		}
	}
	return nil
}
