package subm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/retry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	// CommitUpload inserts s and points its deadline at it in one
	// transaction. An approved s also completes the deadline.
	CommitUpload(ctx context.Context, s Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (Submission, error)
	// ListSubmissions returns the submissions of a deadline, newest first.
	ListSubmissions(ctx context.Context, deadlineID uuid.UUID) ([]Submission, error)
	// ListPending returns the pending submissions of submitter, oldest first.
	ListPending(ctx context.Context, submitter uuid.UUID) ([]Submission, error)
	// ApplyReview moves a pending submission to status in one transaction,
	// completing the deadline on approval.
	ApplyReview(ctx context.Context, id uuid.UUID, status deadline.SubmStatus, reviewer uuid.UUID, at time.Time) (Submission, error)
}

type pgSubmRepo struct {
	pool *pgxpool.Pool
}

func NewPgSubmRepo(pool *pgxpool.Pool) Repo {
	return &pgSubmRepo{pool: pool}
}

func (r *pgSubmRepo) CommitUpload(ctx context.Context, s Submission) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO submissions (
			id, deadline_id, submitter_uuid, image_path, thumb_path, status,
			submitted_at, reviewed_by, reviewed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		s.ID,
		s.DeadlineID,
		s.SubmitterUUID,
		s.ImagePath,
		s.ThumbPath,
		string(s.Status),
		s.SubmittedAt,
		s.ReviewedBy,
		s.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE deadlines
		SET last_submission_id = $2, completed = $3, updated_at = $4
		WHERE id = $1 AND NOT completed
	`, s.DeadlineID, s.ID, s.Status == deadline.SubmApproved, s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to update deadline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// existence was checked before the upload, so it got completed meanwhile
		return deadline.ErrDeadlineCompleted()
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}
	return nil
}

const selectSubmCols = `
	SELECT id, deadline_id, submitter_uuid, image_path, thumb_path, status,
		submitted_at, reviewed_by, reviewed_at
	FROM submissions
`

func scanSubm(row pgx.Row) (Submission, error) {
	var s Submission
	var status string
	err := row.Scan(
		&s.ID,
		&s.DeadlineID,
		&s.SubmitterUUID,
		&s.ImagePath,
		&s.ThumbPath,
		&status,
		&s.SubmittedAt,
		&s.ReviewedBy,
		&s.ReviewedAt,
	)
	if err != nil {
		return Submission{}, err
	}
	s.Status = deadline.SubmStatus(status)
	s.SubmittedAt = deadline.Normalize(s.SubmittedAt)
	return s, nil
}

func (r *pgSubmRepo) GetSubmission(ctx context.Context, id uuid.UUID) (Submission, error) {
	s, err := retry.Read(ctx, func() (Submission, error) {
		s, err := scanSubm(r.pool.QueryRow(ctx, selectSubmCols+` WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return Submission{}, retry.Permanent(err)
		}
		return s, err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrSubmNotFound()
	}
	if err != nil {
		return Submission{}, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

func (r *pgSubmRepo) list(ctx context.Context, query string, arg any) ([]Submission, error) {
	return retry.Read(ctx, func() ([]Submission, error) {
		rows, err := r.pool.Query(ctx, query, arg)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var res []Submission
		for rows.Next() {
			s, err := scanSubm(rows)
			if err != nil {
				return nil, err
			}
			res = append(res, s)
		}
		return res, rows.Err()
	})
}

func (r *pgSubmRepo) ListSubmissions(ctx context.Context, deadlineID uuid.UUID) ([]Submission, error) {
	res, err := r.list(ctx, selectSubmCols+`
		WHERE deadline_id = $1
		ORDER BY submitted_at DESC, id
	`, deadlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return res, nil
}

func (r *pgSubmRepo) ListPending(ctx context.Context, submitter uuid.UUID) ([]Submission, error) {
	res, err := r.list(ctx, selectSubmCols+`
		WHERE submitter_uuid = $1 AND status = 'pending'
		ORDER BY submitted_at ASC, id
	`, submitter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	return res, nil
}

func (r *pgSubmRepo) ApplyReview(ctx context.Context, id uuid.UUID, status deadline.SubmStatus, reviewer uuid.UUID, at time.Time) (Submission, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	s, err := scanSubm(tx.QueryRow(ctx, `
		UPDATE submissions
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING id, deadline_id, submitter_uuid, image_path, thumb_path,
			status, submitted_at, reviewed_by, reviewed_at
	`, id, string(status), reviewer, at))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return Submission{}, fmt.Errorf("failed to check submission: %w", err)
		}
		if !exists {
			return Submission{}, ErrSubmNotFound()
		}
		return Submission{}, ErrSubmNotPending()
	}
	if err != nil {
		return Submission{}, fmt.Errorf("failed to update submission: %w", err)
	}

	if status == deadline.SubmApproved {
		_, err = tx.Exec(ctx, `
			UPDATE deadlines SET completed = TRUE, updated_at = $2 WHERE id = $1
		`, s.DeadlineID, at)
		if err != nil {
			return Submission{}, fmt.Errorf("failed to complete deadline: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Submission{}, fmt.Errorf("failed to commit review: %w", err)
	}
	return s, nil
}
