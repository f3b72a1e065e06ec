package srvcerror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deadlinr/backend/srvcerror"
	"github.com/stretchr/testify/assert"
)

func TestDefaultStatusPerCategory(t *testing.T) {
	testCases := []struct {
		name   string
		err    *srvcerror.Error
		status int
	}{
		{"validation", srvcerror.Validation("x", "bad"), http.StatusBadRequest},
		{"auth", srvcerror.Auth("x", "who"), http.StatusUnauthorized},
		{"rate limit", srvcerror.RateLimit("x", "slow down"), http.StatusTooManyRequests},
		{"storage", srvcerror.Storage(errors.New("s3 down")), http.StatusInternalServerError},
		{"database", srvcerror.Database(errors.New("pg down")), http.StatusInternalServerError},
		{"not found", srvcerror.NotFound("deadline"), http.StatusNotFound},
		{"forbidden", srvcerror.Forbidden(), http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.HttpStatusCode())
		})
	}
}

func TestBackendTextIsNotExposed(t *testing.T) {
	cause := errors.New("pq: relation \"deadlines\" does not exist")
	err := srvcerror.Database(cause)

	assert.NotContains(t, err.Error(), "deadlines")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, srvcerror.CategoryDatabase, err.Category())
}

func TestCategoryOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("upload: %w", srvcerror.RateLimit("upload_rate_limited", "too many"))

	assert.Equal(t, srvcerror.CategoryRateLimit, srvcerror.CategoryOf(wrapped))
	assert.True(t, srvcerror.HasCode(wrapped, "upload_rate_limited"))
	assert.Equal(t, srvcerror.CategoryDatabase, srvcerror.CategoryOf(errors.New("plain")))
}
