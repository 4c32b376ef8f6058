package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-routine-api/internal/models"
)

func TestTeacherPreferenceRepositoryList(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewTeacherPreferenceRepository(db)

	now := time.Now()
	columns := []string{"id", "teacher_id", "day", "slot", "level", "academic_year", "active", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM teacher_preferences WHERE academic_year = $1 AND active = TRUE")).
		WithArgs("2024-2025").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("pref-1", "teacher-1", 1, 1, "UNAVAILABLE", "2024-2025", true, now, now).
			AddRow("pref-2", "teacher-2", 5, 9, "HIGH", "2024-2025", true, now, now))

	prefs, err := repo.ListActiveByAcademicYear(context.Background(), "2024-2025")
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, models.Saturday, prefs[0].Day)
	assert.Equal(t, models.PreferenceUnavailable, prefs[0].Level)
	assert.Equal(t, models.Wednesday, prefs[1].Day)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND academic_year = $2 AND active = TRUE ORDER BY day, slot")).
		WithArgs("teacher-1", "2024-2025").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("pref-1", "teacher-1", 1, 1, "UNAVAILABLE", "2024-2025", true, now, now))

	mine, err := repo.ListByTeacher(context.Background(), "teacher-1", "2024-2025")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherPreferenceRepositoryReplaceForTeacher(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewTeacherPreferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teacher_preferences SET active = FALSE").
		WithArgs(sqlmock.AnyArg(), "teacher-1", "2024-2025").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO teacher_preferences").
		WithArgs(sqlmock.AnyArg(), "teacher-1", int64(models.Sunday), int64(2), "HIGH", "2024-2025", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO teacher_preferences").
		WithArgs(sqlmock.AnyArg(), "teacher-1", int64(models.Monday), int64(7), "UNAVAILABLE", "2024-2025", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	prefs := []models.TeacherPreference{
		{Day: models.Sunday, Slot: 2, Level: models.PreferenceHigh},
		{Day: models.Monday, Slot: 7, Level: models.PreferenceUnavailable},
	}
	require.NoError(t, repo.ReplaceForTeacher(context.Background(), "teacher-1", "2024-2025", prefs))
	for _, pref := range prefs {
		assert.NotEmpty(t, pref.ID)
		assert.True(t, pref.Active)
		assert.Equal(t, "teacher-1", pref.TeacherID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherPreferenceRepositoryReplaceRollsBack(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewTeacherPreferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teacher_preferences SET active = FALSE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO teacher_preferences").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.ReplaceForTeacher(context.Background(), "teacher-1", "2024-2025", []models.TeacherPreference{{Day: models.Sunday, Slot: 2, Level: models.PreferenceHigh}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
