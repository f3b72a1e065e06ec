package retry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deadlinr/backend/retry"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRetriesTransientFailures(t *testing.T) {
	calls := 0
	res, err := retry.Read(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection reset by peer")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Equal(t, 3, calls)
}

func TestReadGivesUpAfterBudget(t *testing.T) {
	calls := 0
	_, err := retry.Read(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("still down")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestReadDoesNotRetryPermanentErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{"no rows", pgx.ErrNoRows},
		{"service error", srvcerror.NotFound("deadline")},
		{"marked permanent", retry.Permanent(errors.New("no such user"))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			_, err := retry.Read(context.Background(), func() (string, error) {
				calls++
				return "", tc.err
			})
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, 1, calls)
		})
	}
}
