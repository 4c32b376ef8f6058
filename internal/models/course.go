package models

import "time"

// Course is read-only reference data consumed by the routine generator.
type Course struct {
	ID           string     `db:"id" json:"id"`
	Code         string     `db:"code" json:"code"`
	Name         string     `db:"name" json:"name"`
	Type         CourseType `db:"course_type" json:"type"`
	ContactHours int        `db:"contact_hours" json:"contact_hours"`
	CreditHours  float64    `db:"credit_hours" json:"credit_hours"`
	Department   string     `db:"department" json:"department"`
	Semester     int        `db:"semester" json:"semester"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
