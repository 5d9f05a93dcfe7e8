package store

import (
	"context"
	"database/sql"
	"testing"

	stderrors "match-workers/internal/common/errors"
	"match-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSavedOrApplied(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStateStore(db)

	mock.ExpectQuery("FROM saved_jobs").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"job_hash"}).
			AddRow("h1").
			AddRow("h2"))

	hashes, err := s.ListSavedOrApplied(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Len(t, hashes, 2)
	_, ok := hashes["h1"]
	assert.True(t, ok)
}

func TestSaveJob(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStateStore(db)

	mock.ExpectExec("INSERT INTO saved_jobs").
		WithArgs("user-1", "h1", models.StatusSaved).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.SaveJob(context.Background(), "user-1", "h1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsaveJob(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStateStore(db)

	mock.ExpectExec("DELETE FROM saved_jobs").
		WithArgs("user-1", "h1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UnsaveJob(context.Background(), "user-1", "h1"))
}

func TestUpdateApplicationStatus(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStateStore(db)

	mock.ExpectQuery("SELECT user_id, job_hash, status").
		WithArgs("user-1", "h1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "job_hash", "status"}).
			AddRow("user-1", "h1", "saved"))
	mock.ExpectExec("UPDATE saved_jobs SET status").
		WithArgs("user-1", "h1", models.StatusApplied).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateApplicationStatus(context.Background(), "user-1", "h1", models.StatusApplied)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationStatusRejectsIllegalTransition(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStateStore(db)

	// offered is terminal, no UPDATE should be issued
	mock.ExpectQuery("SELECT user_id, job_hash, status").
		WithArgs("user-1", "h1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "job_hash", "status"}).
			AddRow("user-1", "h1", "offered"))

	err := s.UpdateApplicationStatus(context.Background(), "user-1", "h1", models.StatusRejected)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationStatusUnknownJob(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStateStore(db)

	mock.ExpectQuery("SELECT user_id, job_hash, status").
		WithArgs("user-1", "nope").
		WillReturnError(sql.ErrNoRows)

	err := s.UpdateApplicationStatus(context.Background(), "user-1", "nope", models.StatusApplied)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeJobNotFound, stderrors.CodeOf(err))
}
