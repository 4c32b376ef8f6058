package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/class-routine-api/internal/models"
)

const routineSessionColumns = `id, academic_year, status, seed, scheduled_courses, skipped_count, conflict_count, report, error, triggered_by, started_at, finished_at`

// RoutineSessionRepository persists generation run records.
type RoutineSessionRepository struct {
	db *sqlx.DB
}

// NewRoutineSessionRepository constructs a RoutineSessionRepository.
func NewRoutineSessionRepository(db *sqlx.DB) *RoutineSessionRepository {
	return &RoutineSessionRepository{db: db}
}

// Create stores a new RUNNING session.
func (r *RoutineSessionRepository) Create(ctx context.Context, session *models.RoutineSession) error {
	if session == nil {
		return fmt.Errorf("routine session payload is nil")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.RoutineSessionRunning
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	if len(session.Report) == 0 {
		session.Report = types.JSONText(`{}`)
	}

	query := `INSERT INTO routine_sessions (` + routineSessionColumns + `)
VALUES (:id, :academic_year, :status, :seed, :scheduled_courses, :skipped_count, :conflict_count, :report, :error, :triggered_by, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("insert routine session: %w", err)
	}
	return nil
}

// Finish moves a RUNNING session to its terminal state.
func (r *RoutineSessionRepository) Finish(ctx context.Context, session *models.RoutineSession) error {
	if session == nil {
		return fmt.Errorf("routine session payload is nil")
	}
	if session.FinishedAt == nil {
		now := time.Now().UTC()
		session.FinishedAt = &now
	}
	if len(session.Report) == 0 {
		session.Report = types.JSONText(`{}`)
	}

	const query = `UPDATE routine_sessions SET status = :status, seed = :seed, scheduled_courses = :scheduled_courses,
	skipped_count = :skipped_count, conflict_count = :conflict_count, report = :report, error = :error, finished_at = :finished_at
WHERE id = :id AND status = 'RUNNING'`
	result, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("finish routine session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("routine session rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID loads a session by id.
func (r *RoutineSessionRepository) FindByID(ctx context.Context, id string) (*models.RoutineSession, error) {
	query := `SELECT ` + routineSessionColumns + ` FROM routine_sessions WHERE id = $1`
	var session models.RoutineSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByAcademicYear returns a year's sessions, newest first, without reports.
func (r *RoutineSessionRepository) ListByAcademicYear(ctx context.Context, academicYear string, limit int) ([]models.RoutineSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `SELECT id, academic_year, status, seed, scheduled_courses, skipped_count, conflict_count, error, triggered_by, started_at, finished_at
FROM routine_sessions WHERE academic_year = $1 ORDER BY started_at DESC LIMIT $2`
	var sessions []models.RoutineSession
	if err := r.db.SelectContext(ctx, &sessions, query, academicYear, limit); err != nil {
		return nil, fmt.Errorf("list routine sessions: %w", err)
	}
	return sessions, nil
}

// FailStale marks sessions still RUNNING since before the cutoff as FAILED and
// returns how many were changed.
func (r *RoutineSessionRepository) FailStale(ctx context.Context, before time.Time, reason string) (int64, error) {
	const query = `UPDATE routine_sessions SET status = 'FAILED', error = $1, finished_at = $2
WHERE status = 'RUNNING' AND started_at < $3`
	result, err := r.db.ExecContext(ctx, query, reason, time.Now().UTC(), before)
	if err != nil {
		return 0, fmt.Errorf("fail stale routine sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale routine sessions rows affected: %w", err)
	}
	return affected, nil
}
