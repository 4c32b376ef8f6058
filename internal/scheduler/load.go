package scheduler

import "github.com/noah-isme/class-routine-api/internal/models"

// LoadTracker counts teaching hours per teacher.
type LoadTracker struct {
	initial   map[string]int
	committed map[string]int
}

// NewLoadTracker computes each teacher's demand as contact hours times owned
// sections, summed over their rows.
func NewLoadTracker(assignments []models.CourseAssignment) *LoadTracker {
	tracker := &LoadTracker{
		initial:   make(map[string]int),
		committed: make(map[string]int),
	}
	for _, a := range assignments {
		if a.Teacher == nil || a.Course == nil {
			continue
		}
		tracker.initial[a.Teacher.ID] += a.Course.ContactHours * len(a.OwnedSections())
	}
	return tracker
}

// Initial is the demand computed before any placement.
func (l *LoadTracker) Initial(teacherID string) int {
	return l.initial[teacherID]
}

// Committed is the number of hours placed so far in this run.
func (l *LoadTracker) Committed(teacherID string) int {
	return l.committed[teacherID]
}

// Add records hours placed for the teacher.
func (l *LoadTracker) Add(teacherID string, hours int) {
	l.committed[teacherID] += hours
}
