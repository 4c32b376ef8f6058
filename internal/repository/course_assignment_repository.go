package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-routine-api/internal/models"
)

// CourseAssignmentRepository reads teacher to course assignments.
type CourseAssignmentRepository struct {
	db *sqlx.DB
}

// NewCourseAssignmentRepository constructs a CourseAssignmentRepository.
func NewCourseAssignmentRepository(db *sqlx.DB) *CourseAssignmentRepository {
	return &CourseAssignmentRepository{db: db}
}

// ListActiveByAcademicYear returns the active rows of a year ordered by creation.
func (r *CourseAssignmentRepository) ListActiveByAcademicYear(ctx context.Context, academicYear string) ([]models.CourseAssignment, error) {
	const query = `SELECT id, teacher_id, course_id, semester, section, sections, academic_year, active, created_at, updated_at
FROM course_assignments WHERE academic_year = $1 AND active = TRUE ORDER BY created_at, id`
	var assignments []models.CourseAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, academicYear); err != nil {
		return nil, fmt.Errorf("list course assignments: %w", err)
	}
	return assignments, nil
}
