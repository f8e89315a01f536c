package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/carefront/models"
	"gorm.io/gorm"
)

func TestAppointmentRepo_ListByStatus(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewAppointmentRepo(gdb)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE status = .+ ORDER BY created_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_name", "date", "status", "created_at"}).
			AddRow(uuid.NewString(), "Bilal", now, "Pending", now))

	got, err := repo.List(context.Background(), models.AppointmentFilter{Status: models.AppointmentPending}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bilal", got[0].PatientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_UpdateStatus(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewAppointmentRepo(gdb)
	id := uuid.NewString()
	now := time.Now()

	mock.ExpectExec(`UPDATE "appointments" SET "status"=`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_name", "date", "status"}).AddRow(id, "Bilal", now, "Accepted"))

	got, err := repo.UpdateStatus(context.Background(), id, models.AppointmentAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentAccepted, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_UpdateStatusMissing(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewAppointmentRepo(gdb)

	mock.ExpectExec(`UPDATE "appointments" SET "status"=`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateStatus(context.Background(), uuid.NewString(), models.AppointmentRejected)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
