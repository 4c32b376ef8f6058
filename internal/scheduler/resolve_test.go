package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-routine-api/internal/models"
)

func TestResolve(t *testing.T) {
	teachers := []models.Teacher{{ID: "t1", FullName: "Rahman"}, {ID: "t2"}}
	courses := []models.Course{{ID: "c1", Code: "CSE101", Type: models.CourseTheory, ContactHours: 3}}
	rows := []models.CourseAssignment{
		{ID: "a1", TeacherID: "t1", CourseID: "c1", Semester: 1, Section: "A", Active: true},
		{ID: "a2", TeacherID: "t2", CourseID: "c1", Semester: 1, Section: "B", Active: true},
	}

	resolved, err := Resolve(rows, teachers, courses)
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "Rahman", resolved[0].Teacher.FullName)
	assert.Equal(t, "CSE101", resolved[1].Course.Code)
	assert.Nil(t, rows[0].Teacher)

	teacherIDs, courseIDs := ReferencedIDs(rows)
	assert.Equal(t, []string{"t1", "t2"}, teacherIDs)
	assert.Equal(t, []string{"c1"}, courseIDs)
}

func TestResolveUnknownReference(t *testing.T) {
	rows := []models.CourseAssignment{{ID: "a1", TeacherID: "t1", CourseID: "missing"}}

	_, err := Resolve(rows, []models.Teacher{{ID: "t1"}}, nil)
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	_, err = Resolve(rows, nil, []models.Course{{ID: "missing"}})
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}
