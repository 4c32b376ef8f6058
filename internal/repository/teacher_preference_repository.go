package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-routine-api/internal/models"
)

const teacherPreferenceColumns = `id, teacher_id, day, slot, level, academic_year, active, created_at, updated_at`

// TeacherPreferenceRepository persists per slot teacher preferences.
type TeacherPreferenceRepository struct {
	db *sqlx.DB
}

// NewTeacherPreferenceRepository constructs the repository.
func NewTeacherPreferenceRepository(db *sqlx.DB) *TeacherPreferenceRepository {
	return &TeacherPreferenceRepository{db: db}
}

// ListActiveByAcademicYear returns every active preference of a year.
func (r *TeacherPreferenceRepository) ListActiveByAcademicYear(ctx context.Context, academicYear string) ([]models.TeacherPreference, error) {
	query := `SELECT ` + teacherPreferenceColumns + ` FROM teacher_preferences WHERE academic_year = $1 AND active = TRUE`
	var prefs []models.TeacherPreference
	if err := r.db.SelectContext(ctx, &prefs, query, academicYear); err != nil {
		return nil, fmt.Errorf("list teacher preferences: %w", err)
	}
	return prefs, nil
}

// ListByTeacher returns the active preferences of a teacher for a year.
func (r *TeacherPreferenceRepository) ListByTeacher(ctx context.Context, teacherID, academicYear string) ([]models.TeacherPreference, error) {
	query := `SELECT ` + teacherPreferenceColumns + ` FROM teacher_preferences
WHERE teacher_id = $1 AND academic_year = $2 AND active = TRUE ORDER BY day, slot`
	var prefs []models.TeacherPreference
	if err := r.db.SelectContext(ctx, &prefs, query, teacherID, academicYear); err != nil {
		return nil, fmt.Errorf("list teacher preferences by teacher: %w", err)
	}
	return prefs, nil
}

// ReplaceForTeacher deactivates the teacher's rows of the year and inserts prefs
// as the new active set. It runs inside a transaction.
func (r *TeacherPreferenceRepository) ReplaceForTeacher(ctx context.Context, teacherID, academicYear string, prefs []models.TeacherPreference) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace teacher preferences: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const deactivate = `UPDATE teacher_preferences SET active = FALSE, updated_at = $1 WHERE teacher_id = $2 AND academic_year = $3 AND active = TRUE`
	if _, err = tx.ExecContext(ctx, deactivate, now, teacherID, academicYear); err != nil {
		return fmt.Errorf("deactivate teacher preferences: %w", err)
	}

	const insert = `INSERT INTO teacher_preferences (id, teacher_id, day, slot, level, academic_year, active, created_at, updated_at)
VALUES (:id, :teacher_id, :day, :slot, :level, :academic_year, :active, :created_at, :updated_at)`
	for i := range prefs {
		pref := &prefs[i]
		if pref.ID == "" {
			pref.ID = uuid.NewString()
		}
		pref.TeacherID = teacherID
		pref.AcademicYear = academicYear
		pref.Active = true
		pref.CreatedAt = now
		pref.UpdatedAt = now
		if _, err = sqlx.NamedExecContext(ctx, tx, insert, pref); err != nil {
			return fmt.Errorf("insert teacher preference: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit teacher preferences: %w", err)
	}
	return nil
}
