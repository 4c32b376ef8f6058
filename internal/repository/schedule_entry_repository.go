package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-routine-api/internal/models"
)

// ScheduleEntryRepository persists generated routine entries.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository constructs a ScheduleEntryRepository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

func (r *ScheduleEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteByAcademicYear clears a year's routine and returns the removed row count.
func (r *ScheduleEntryRepository) DeleteByAcademicYear(ctx context.Context, exec sqlx.ExtContext, academicYear string) (int64, error) {
	const query = `DELETE FROM schedule_entries WHERE academic_year = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, academicYear)
	if err != nil {
		return 0, fmt.Errorf("delete schedule entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("schedule entries rows affected: %w", err)
	}
	return affected, nil
}

const entrySavepoint = "routine_entry"

// Create inserts one entry, assigning its id and creation time when unset.
// Inside a transaction the insert runs under a savepoint so a failed row leaves
// the transaction usable for the rows that follow.
func (r *ScheduleEntryRepository) Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	if entry == nil {
		return fmt.Errorf("schedule entry payload is nil")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO schedule_entries (id, course_id, teacher_id, day, slot, semester, section, academic_year, created_at)
VALUES (:id, :course_id, :teacher_id, :day, :slot, :semester, :section, :academic_year, :created_at)`
	tx, inTx := exec.(*sqlx.Tx)
	if !inTx {
		if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
		return nil
	}

	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+entrySavepoint); err != nil {
		return fmt.Errorf("schedule entry savepoint: %w", err)
	}
	if _, err := sqlx.NamedExecContext(ctx, tx, query, entry); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+entrySavepoint); rbErr != nil {
			return fmt.Errorf("insert schedule entry: %w (rollback to savepoint: %v)", err, rbErr)
		}
		return fmt.Errorf("insert schedule entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+entrySavepoint); err != nil {
		return fmt.Errorf("release schedule entry savepoint: %w", err)
	}
	return nil
}

// ListByAcademicYear returns the filtered routine with course and teacher details,
// ordered by semester, section, day and slot.
func (r *ScheduleEntryRepository) ListByAcademicYear(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, error) {
	conditions := []string{"e.academic_year = $1"}
	args := []interface{}{filter.AcademicYear}

	if filter.Semester != nil {
		args = append(args, *filter.Semester)
		conditions = append(conditions, fmt.Sprintf("e.semester = $%d", len(args)))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		conditions = append(conditions, fmt.Sprintf("e.section = $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("e.teacher_id = $%d", len(args)))
	}

	query := `SELECT e.id, e.course_id, e.teacher_id, e.day, e.slot, e.semester, e.section, e.academic_year, e.created_at,
	c.code AS course_code, c.name AS course_name, c.course_type AS course_type, t.full_name AS teacher_name
FROM schedule_entries e
JOIN courses c ON c.id = e.course_id
JOIN teachers t ON t.id = e.teacher_id
WHERE ` + strings.Join(conditions, " AND ") + `
ORDER BY e.semester, e.section, e.day, e.slot`

	var entries []models.ScheduleEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}
