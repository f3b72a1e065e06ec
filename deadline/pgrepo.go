package deadline

import (
	"context"
	"errors"
	"fmt"

	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/retry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgDeadlineRepo struct {
	pool *pgxpool.Pool
}

func NewPgDeadlineRepo(pool *pgxpool.Pool) Repo {
	return &pgDeadlineRepo{pool: pool}
}

// StoreDeadline upserts the editable columns. Completion and the last
// submission pointer are owned by the submission workflow and are left
// untouched on conflict.
func (r *pgDeadlineRepo) StoreDeadline(ctx context.Context, d Deadline) error {
	log := logger.FromContext(ctx)
	log.Debug("storing deadline", "deadline_id", d.ID)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO deadlines (
			id, owner_uuid, name, description, due_at, completed,
			last_submission_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			due_at = EXCLUDED.due_at,
			updated_at = EXCLUDED.updated_at
	`,
		d.ID,
		d.OwnerUUID,
		d.Name,
		d.Description,
		d.Due,
		d.Completed,
		d.LastSubmID,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert deadline: %w", err)
	}
	return nil
}

const selectDeadlineCols = `
	SELECT id, owner_uuid, name, description, due_at, completed,
		last_submission_id, created_at, updated_at
	FROM deadlines
`

func scanDeadline(row pgx.Row) (Deadline, error) {
	var d Deadline
	err := row.Scan(
		&d.ID,
		&d.OwnerUUID,
		&d.Name,
		&d.Description,
		&d.Due,
		&d.Completed,
		&d.LastSubmID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return Deadline{}, err
	}
	d.Due = Normalize(d.Due)
	return d, nil
}

func (r *pgDeadlineRepo) GetDeadline(ctx context.Context, id uuid.UUID) (Deadline, error) {
	d, err := retry.Read(ctx, func() (Deadline, error) {
		d, err := scanDeadline(r.pool.QueryRow(ctx, selectDeadlineCols+` WHERE id = $1`, id))
		if err != nil {
			return Deadline{}, err
		}
		subms, err := r.listSubms(ctx, []uuid.UUID{id})
		if err != nil {
			return Deadline{}, err
		}
		d.Submissions = subms[id]
		return d, nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Deadline{}, ErrDeadlineNotFound()
	}
	if err != nil {
		return Deadline{}, fmt.Errorf("failed to get deadline: %w", err)
	}
	return d, Validate(d)
}

func (r *pgDeadlineRepo) ListDeadlines(ctx context.Context, ownerUUID uuid.UUID) ([]Deadline, error) {
	res, err := retry.Read(ctx, func() ([]Deadline, error) {
		rows, err := r.pool.Query(ctx, selectDeadlineCols+` WHERE owner_uuid = $1`, ownerUUID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var ds []Deadline
		var ids []uuid.UUID
		for rows.Next() {
			d, err := scanDeadline(rows)
			if err != nil {
				return nil, err
			}
			ds = append(ds, d)
			ids = append(ids, d.ID)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		subms, err := r.listSubms(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range ds {
			ds[i].Submissions = subms[ds[i].ID]
		}
		return ds, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	for _, d := range res {
		if err := Validate(d); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *pgDeadlineRepo) listSubms(ctx context.Context, deadlineIDs []uuid.UUID) (map[uuid.UUID][]SubmSummary, error) {
	res := make(map[uuid.UUID][]SubmSummary)
	if len(deadlineIDs) == 0 {
		return res, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, deadline_id, status, submitted_at
		FROM submissions
		WHERE deadline_id = ANY($1)
		ORDER BY submitted_at DESC
	`, deadlineIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s SubmSummary
		var deadlineID uuid.UUID
		var status string
		if err := rows.Scan(&s.ID, &deadlineID, &status, &s.SubmittedAt); err != nil {
			return nil, err
		}
		s.Status = SubmStatus(status)
		s.SubmittedAt = Normalize(s.SubmittedAt)
		res[deadlineID] = append(res[deadlineID], s)
	}
	return res, rows.Err()
}
