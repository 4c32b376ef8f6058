package models

import "time"

// ScheduleEntry is one placed class of the weekly routine.
type ScheduleEntry struct {
	ID           string     `db:"id" json:"id"`
	CourseID     string     `db:"course_id" json:"course_id"`
	TeacherID    string     `db:"teacher_id" json:"teacher_id"`
	Day          WorkingDay `db:"day" json:"day"`
	Slot         int        `db:"slot" json:"slot"`
	Semester     int        `db:"semester" json:"semester"`
	Section      string     `db:"section" json:"section"`
	AcademicYear string     `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ScheduleEntryDetail enriches an entry with display fields.
type ScheduleEntryDetail struct {
	ScheduleEntry
	CourseCode  string     `db:"course_code" json:"course_code"`
	CourseName  string     `db:"course_name" json:"course_name"`
	CourseType  CourseType `db:"course_type" json:"course_type"`
	TeacherName string     `db:"teacher_name" json:"teacher_name"`
}

// ScheduleEntryFilter narrows grid queries.
type ScheduleEntryFilter struct {
	AcademicYear string
	Semester     *int
	Section      string
	TeacherID    string
}
