package scheduler

import "github.com/noah-isme/class-routine-api/internal/models"

// Result is the outcome of one generation run. Success is true whenever the
// run finished without a fatal error, so callers must inspect Skipped to
// detect a partial routine.
type Result struct {
	Success          bool                      `json:"success"`
	AcademicYear     string                    `json:"academic_year"`
	Seed             int64                     `json:"seed"`
	ScheduledCourses int                       `json:"scheduled_courses"`
	Skipped          []models.SkippedPlacement `json:"skipped"`
	Conflicts        []models.RoutineConflict  `json:"conflicts"`
	Entries          []models.ScheduleEntry    `json:"entries"`
}

// Partial reports whether some section did not receive all its contact hours.
func (r *Result) Partial() bool {
	return len(r.Skipped) > 0
}

// ConflictCounts tallies conflicts by type.
func (r *Result) ConflictCounts() map[models.ConflictType]int {
	counts := make(map[models.ConflictType]int, len(models.ConflictTypes))
	for _, conflict := range r.Conflicts {
		counts[conflict.Type]++
	}
	return counts
}

// Report returns the persisted diagnostics of the run.
func (r *Result) Report() models.RoutineReport {
	return models.RoutineReport{Skipped: r.Skipped, Conflicts: r.Conflicts}
}
