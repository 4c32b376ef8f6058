package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RoutineSessionStatus is the lifecycle state of a generation run.
type RoutineSessionStatus string

const (
	RoutineSessionRunning   RoutineSessionStatus = "RUNNING"
	RoutineSessionCompleted RoutineSessionStatus = "COMPLETED"
	RoutineSessionFailed    RoutineSessionStatus = "FAILED"
)

// RoutineSession records one generation run for an academic year.
type RoutineSession struct {
	ID               string               `db:"id" json:"id"`
	AcademicYear     string               `db:"academic_year" json:"academic_year"`
	Status           RoutineSessionStatus `db:"status" json:"status"`
	Seed             int64                `db:"seed" json:"seed"`
	ScheduledCourses int                  `db:"scheduled_courses" json:"scheduled_courses"`
	SkippedCount     int                  `db:"skipped_count" json:"skipped_count"`
	ConflictCount    int                  `db:"conflict_count" json:"conflict_count"`
	Report           types.JSONText       `db:"report" json:"report,omitempty"`
	Error            *string              `db:"error" json:"error,omitempty"`
	TriggeredBy      *string              `db:"triggered_by" json:"triggered_by,omitempty"`
	StartedAt        time.Time            `db:"started_at" json:"started_at"`
	FinishedAt       *time.Time           `db:"finished_at" json:"finished_at,omitempty"`
}

// RoutineReport is the persisted shape of a run's diagnostics.
type RoutineReport struct {
	Skipped   []SkippedPlacement `json:"skipped"`
	Conflicts []RoutineConflict  `json:"conflicts"`
}
