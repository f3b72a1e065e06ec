package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/guregu/dynamo/v2"
)

// AttemptsRow holds the recent attempts of one user. The table needs TTL
// enabled on expires_at so idle users disappear on their own.
type AttemptsRow struct {
	UserUuid  string    `dynamo:"user_uuid,hash"`
	Attempts  []int64   `dynamo:"attempts_unix_ms"`
	ExpiresAt time.Time `dynamo:"expires_at,unixtime"`
	Version   int       `dynamo:"version"` // For optimistic locking
}

type DynamoDbAttemptStore struct {
	table dynamo.Table
}

func NewDynamoDbAttemptStore(ddbClient *dynamodb.Client, tableName string) *DynamoDbAttemptStore {
	db := dynamo.NewFromIface(ddbClient)
	return &DynamoDbAttemptStore{table: db.Table(tableName)}
}

// TryRecord does read-modify-write on the user's row and retries when
// another writer got there first.
func (s *DynamoDbAttemptStore) TryRecord(ctx context.Context, user uuid.UUID, now time.Time, window time.Duration, limit int) (bool, error) {
	bo := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewConstantBackOff(20*time.Millisecond), 4), ctx)

	return backoff.RetryWithData(func() (bool, error) {
		ok, err := s.tryRecordOnce(ctx, user, now, window, limit)
		if err != nil && !dynamo.IsCondCheckFailed(err) {
			return false, backoff.Permanent(err)
		}
		return ok, err
	}, bo)
}

func (s *DynamoDbAttemptStore) tryRecordOnce(ctx context.Context, user uuid.UUID, now time.Time, window time.Duration, limit int) (bool, error) {
	row := AttemptsRow{UserUuid: user.String()}
	err := s.table.Get("user_uuid", row.UserUuid).One(ctx, &row)
	if err != nil && !errors.Is(err, dynamo.ErrNotFound) {
		return false, fmt.Errorf("failed to get attempts row: %w", err)
	}

	cutoff := now.Add(-window).UnixMilli()
	kept := make([]int64, 0, len(row.Attempts)+1)
	for _, a := range row.Attempts {
		if a > cutoff {
			kept = append(kept, a)
		}
	}
	if len(kept) >= limit {
		return false, nil
	}

	prevVersion := row.Version
	row.Attempts = append(kept, now.UnixMilli())
	row.ExpiresAt = now.Add(window)
	row.Version++

	put := s.table.Put(row).If("attribute_not_exists(version) OR version = ?", prevVersion)
	if err := put.Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}
