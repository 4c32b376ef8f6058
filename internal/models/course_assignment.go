package models

import (
	"time"

	"github.com/lib/pq"
)

// CourseAssignment links a teacher to a course and the sections they teach in one academic year.
type CourseAssignment struct {
	ID           string         `db:"id" json:"id"`
	TeacherID    string         `db:"teacher_id" json:"teacher_id"`
	CourseID     string         `db:"course_id" json:"course_id"`
	Semester     int            `db:"semester" json:"semester"`
	Section      string         `db:"section" json:"section"`
	Sections     pq.StringArray `db:"sections" json:"sections"`
	AcademicYear string         `db:"academic_year" json:"academic_year"`
	Active       bool           `db:"active" json:"active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`

	Teacher *Teacher `db:"-" json:"teacher,omitempty"`
	Course  *Course  `db:"-" json:"course,omitempty"`
}

// OwnedSections returns the sections this row places, falling back to Section.
func (a CourseAssignment) OwnedSections() []string {
	if len(a.Sections) > 0 {
		return a.Sections
	}
	if a.Section == "" {
		return nil
	}
	return []string{a.Section}
}
