package dto

import (
	"github.com/noah-isme/class-routine-api/internal/models"
)

// GenerateRoutineRequest starts a generation run for an academic year.
type GenerateRoutineRequest struct {
	AcademicYear string `json:"academic_year" validate:"required,max=32"`
	Seed         int64  `json:"seed"`
	MaxAttempts  int    `json:"max_attempts" validate:"omitempty,min=1,max=10"`
	DailyLimit   int    `json:"daily_limit" validate:"omitempty,min=1,max=9"`
}

// GenerateRoutineResponse reports a finished run.
type GenerateRoutineResponse struct {
	SessionID        string                    `json:"session_id"`
	AcademicYear     string                    `json:"academic_year"`
	Success          bool                      `json:"success"`
	Partial          bool                      `json:"partial"`
	Seed             int64                     `json:"seed"`
	ScheduledCourses int                       `json:"scheduled_courses"`
	Skipped          []models.SkippedPlacement `json:"skipped"`
	ConflictCounts   map[string]int            `json:"conflict_counts"`
	Conflicts        []models.RoutineConflict  `json:"conflicts,omitempty"`
}

// GenerateRoutineAccepted is returned when a run is queued.
type GenerateRoutineAccepted struct {
	JobID        string `json:"job_id"`
	SessionID    string `json:"session_id"`
	AcademicYear string `json:"academic_year"`
}

// RoutineGridQuery filters the weekly grid.
type RoutineGridQuery struct {
	Semester  *int   `form:"semester" json:"semester" validate:"omitempty,min=1,max=8"`
	Section   string `form:"section" json:"section" validate:"omitempty,len=1,uppercase"`
	TeacherID string `form:"teacher_id" json:"teacher_id"`
}

// RoutineGridCell is one (day, slot) of the grid. Unfiltered grids may hold
// several sections per cell.
type RoutineGridCell struct {
	Slot    int                          `json:"slot"`
	Entries []models.ScheduleEntryDetail `json:"entries"`
}

// RoutineGridDay is one row of the grid.
type RoutineGridDay struct {
	Day   models.WorkingDay `json:"day"`
	Cells []RoutineGridCell `json:"cells"`
}

// RoutineGridResponse is the weekly grid of an academic year.
type RoutineGridResponse struct {
	AcademicYear string            `json:"academic_year"`
	Slots        []models.TimeSlot `json:"slots"`
	Days         []RoutineGridDay  `json:"days"`
	TotalEntries int               `json:"total_entries"`
}

// PreferenceItem is one stated slot preference.
type PreferenceItem struct {
	Day   string `json:"day" validate:"required"`
	Slot  int    `json:"slot" validate:"required,min=1,max=9"`
	Level string `json:"level" validate:"required,oneof=HIGH MEDIUM LOW UNAVAILABLE"`
}

// ReplacePreferencesRequest replaces every active preference of a teacher for a year.
type ReplacePreferencesRequest struct {
	AcademicYear string           `json:"academic_year" validate:"required,max=32"`
	Preferences  []PreferenceItem `json:"preferences" validate:"max=45,dive"`
}
