package models

import "time"

// TeacherPreference stores how much a teacher wants a given weekly slot.
type TeacherPreference struct {
	ID           string          `db:"id" json:"id"`
	TeacherID    string          `db:"teacher_id" json:"teacher_id"`
	Day          WorkingDay      `db:"day" json:"day"`
	Slot         int             `db:"slot" json:"slot"`
	Level        PreferenceLevel `db:"level" json:"level"`
	AcademicYear string          `db:"academic_year" json:"academic_year"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
