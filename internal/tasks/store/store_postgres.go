package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"campus/internal/tasks/models"
	"campus/pkg/platform/sentinel"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists tasks through pgx.
type PostgresStore struct {
	db DB
}

func NewPostgres(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const taskColumns = `id, owner_id, title, description, status, due_date, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, task *models.Task) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.OwnerID, task.Title, task.Description, string(task.Status), task.DueDate, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	row := s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 AND id = $2`, owner, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, task *models.Task) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, due_date = $6, updated_at = $7
		WHERE owner_id = $1 AND id = $2
	`, task.OwnerID, task.ID, task.Title, task.Description, string(task.Status), task.DueDate, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		t      models.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = models.Status(status)
	return &t, nil
}
