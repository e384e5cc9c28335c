package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/tasks/models"
	"campus/pkg/platform/sentinel"
)

var columns = []string{"id", "owner_id", "title", "description", "status", "due_date", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock), mock
}

func TestPostgresStore_Create(t *testing.T) {
	ctx := context.Background()
	task := newTask(uuid.New(), "Grade essays", time.Now().UTC())

	t.Run("inserts the row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
			WithArgs(task.ID, task.OwnerID, "Grade essays", "", "todo", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.Create(ctx, task))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		assert.ErrorIs(t, store.Create(ctx, task), sentinel.ErrConflict)
	})
}

func TestPostgresStore_FindByID(t *testing.T) {
	ctx := context.Background()
	owner, id := uuid.New(), uuid.New()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)

	t.Run("scans the row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE owner_id = $1 AND id = $2")).
			WithArgs(owner, id).
			WillReturnRows(pgxmock.NewRows(columns).AddRow(id, owner, "Read chapter 3", "pages 40-60", "in-progress", &due, now, now))

		got, err := store.FindByID(ctx, owner, id)
		require.NoError(t, err)
		assert.Equal(t, "Read chapter 3", got.Title)
		assert.Equal(t, models.StatusInProgress, got.Status)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE owner_id = $1 AND id = $2")).
			WithArgs(owner, id).
			WillReturnRows(pgxmock.NewRows(columns))

		_, err := store.FindByID(ctx, owner, id)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresStore_ListByOwner(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	due := now.Add(time.Hour)

	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE owner_id = $1 ORDER BY created_at, id")).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(uuid.New(), owner, "one", "", "todo", &due, now, now).
			AddRow(uuid.New(), owner, "two", "", "done", &due, now.Add(time.Minute), now))

	list, err := store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Title)
	assert.Equal(t, models.StatusDone, list[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	task := newTask(uuid.New(), "Plan lesson", time.Now().UTC())

	t.Run("update of missing row is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WithArgs(task.OwnerID, task.ID, task.Title, task.Description, "todo", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, store.Update(ctx, task), sentinel.ErrNotFound)
	})

	t.Run("update succeeds", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WithArgs(task.OwnerID, task.ID, task.Title, task.Description, "todo", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, store.Update(ctx, task))
	})

	t.Run("delete succeeds then reports not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
			WithArgs(task.OwnerID, task.ID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
			WithArgs(task.OwnerID, task.ID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, store.Delete(ctx, task.OwnerID, task.ID))
		assert.ErrorIs(t, store.Delete(ctx, task.OwnerID, task.ID), sentinel.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors are wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
			WithArgs(task.OwnerID, task.ID).
			WillReturnError(errors.New("connection reset"))

		err := store.Delete(ctx, task.OwnerID, task.ID)
		assert.ErrorContains(t, err, "connection reset")
		assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	})
}
