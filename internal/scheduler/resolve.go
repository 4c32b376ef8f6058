package scheduler

import (
	"fmt"

	"github.com/noah-isme/class-routine-api/internal/models"
)

// Resolve attaches the referenced Teacher and Course to every row. It fails
// with ErrUnresolvedReference on the first row naming an unknown id. The
// input slice is not modified.
func Resolve(rows []models.CourseAssignment, teachers []models.Teacher, courses []models.Course) ([]models.CourseAssignment, error) {
	teacherByID := make(map[string]*models.Teacher, len(teachers))
	for i := range teachers {
		teacherByID[teachers[i].ID] = &teachers[i]
	}
	courseByID := make(map[string]*models.Course, len(courses))
	for i := range courses {
		courseByID[courses[i].ID] = &courses[i]
	}

	resolved := make([]models.CourseAssignment, len(rows))
	for i, row := range rows {
		teacher, ok := teacherByID[row.TeacherID]
		if !ok {
			return nil, fmt.Errorf("%w: assignment %s teacher %q", ErrUnresolvedReference, row.ID, row.TeacherID)
		}
		course, ok := courseByID[row.CourseID]
		if !ok {
			return nil, fmt.Errorf("%w: assignment %s course %q", ErrUnresolvedReference, row.ID, row.CourseID)
		}
		row.Teacher = teacher
		row.Course = course
		resolved[i] = row
	}
	return resolved, nil
}

// ReferencedIDs returns the distinct teacher and course ids of rows in first-seen order.
func ReferencedIDs(rows []models.CourseAssignment) (teacherIDs, courseIDs []string) {
	seenTeachers := make(map[string]bool)
	seenCourses := make(map[string]bool)
	for _, row := range rows {
		if !seenTeachers[row.TeacherID] {
			seenTeachers[row.TeacherID] = true
			teacherIDs = append(teacherIDs, row.TeacherID)
		}
		if !seenCourses[row.CourseID] {
			seenCourses[row.CourseID] = true
			courseIDs = append(courseIDs, row.CourseID)
		}
	}
	return teacherIDs, courseIDs
}
