// Package csvio reads routine inputs from CSV files and writes generated
// routines back out.
package csvio

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/class-routine-api/internal/models"
)

type teacherRow struct {
	ID       string `csv:"id"`
	FullName string `csv:"full_name"`
	Email    string `csv:"email"`
	Rank     string `csv:"academic_rank"`
	Active   string `csv:"active"`
}

type courseRow struct {
	ID           string `csv:"id"`
	Code         string `csv:"code"`
	Name         string `csv:"name"`
	Type         string `csv:"type"`
	ContactHours int    `csv:"contact_hours"`
	CreditHours  string `csv:"credit_hours"`
	Department   string `csv:"department"`
	Semester     int    `csv:"semester"`
}

type assignmentRow struct {
	ID           string `csv:"id"`
	TeacherID    string `csv:"teacher_id"`
	CourseID     string `csv:"course_id"`
	Semester     int    `csv:"semester"`
	Section      string `csv:"section"`
	Sections     string `csv:"sections"`
	AcademicYear string `csv:"academic_year"`
	Active       string `csv:"active"`
}

type preferenceRow struct {
	TeacherID    string `csv:"teacher_id"`
	Day          string `csv:"day"`
	Slot         int    `csv:"slot"`
	Level        string `csv:"level"`
	AcademicYear string `csv:"academic_year"`
}

// ReadTeachers parses teachers with columns id, full_name, email, academic_rank, active.
func ReadTeachers(r io.Reader) ([]models.Teacher, error) {
	var rows []teacherRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse teachers: %w", err)
	}
	teachers := make([]models.Teacher, 0, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			return nil, fmt.Errorf("teachers line %d: id is required", i+2)
		}
		active, err := parseActive(row.Active)
		if err != nil {
			return nil, fmt.Errorf("teachers line %d: %w", i+2, err)
		}
		teachers = append(teachers, models.Teacher{
			ID:       row.ID,
			FullName: row.FullName,
			Email:    row.Email,
			Rank:     models.AcademicRank(strings.TrimSpace(row.Rank)),
			Active:   active,
		})
	}
	return teachers, nil
}

// ReadCourses parses courses with columns id, code, name, type, contact_hours,
// credit_hours, department, semester.
func ReadCourses(r io.Reader) ([]models.Course, error) {
	var rows []courseRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse courses: %w", err)
	}
	courses := make([]models.Course, 0, len(rows))
	for i, row := range rows {
		courseType := models.CourseType(strings.ToLower(strings.TrimSpace(row.Type)))
		if !courseType.Valid() {
			return nil, fmt.Errorf("courses line %d: unknown course type %q", i+2, row.Type)
		}
		if row.ContactHours < 0 {
			return nil, fmt.Errorf("courses line %d: negative contact hours", i+2)
		}
		var credit float64
		if value := strings.TrimSpace(row.CreditHours); value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("courses line %d: credit_hours: %w", i+2, err)
			}
			credit = parsed
		}
		courses = append(courses, models.Course{
			ID:           row.ID,
			Code:         row.Code,
			Name:         row.Name,
			Type:         courseType,
			ContactHours: row.ContactHours,
			CreditHours:  credit,
			Department:   row.Department,
			Semester:     row.Semester,
		})
	}
	return courses, nil
}

// ReadAssignments parses assignment rows. The sections column lists owned
// sections separated by '|' or spaces, e.g. "A|B".
func ReadAssignments(r io.Reader) ([]models.CourseAssignment, error) {
	var rows []assignmentRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse assignments: %w", err)
	}
	assignments := make([]models.CourseAssignment, 0, len(rows))
	for i, row := range rows {
		active, err := parseActive(row.Active)
		if err != nil {
			return nil, fmt.Errorf("assignments line %d: %w", i+2, err)
		}
		id := row.ID
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		}
		assignments = append(assignments, models.CourseAssignment{
			ID:           id,
			TeacherID:    row.TeacherID,
			CourseID:     row.CourseID,
			Semester:     row.Semester,
			Section:      strings.ToUpper(strings.TrimSpace(row.Section)),
			Sections:     splitSections(row.Sections),
			AcademicYear: row.AcademicYear,
			Active:       active,
		})
	}
	return assignments, nil
}

// ReadPreferences parses preference rows with columns teacher_id, day, slot, level, academic_year.
func ReadPreferences(r io.Reader) ([]models.TeacherPreference, error) {
	var rows []preferenceRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	prefs := make([]models.TeacherPreference, 0, len(rows))
	for i, row := range rows {
		day, err := models.ParseWorkingDay(row.Day)
		if err != nil {
			return nil, fmt.Errorf("preferences line %d: %w", i+2, err)
		}
		if !models.ValidSlot(row.Slot) {
			return nil, fmt.Errorf("preferences line %d: slot %d out of range", i+2, row.Slot)
		}
		level, err := models.ParsePreferenceLevel(row.Level)
		if err != nil {
			return nil, fmt.Errorf("preferences line %d: %w", i+2, err)
		}
		prefs = append(prefs, models.TeacherPreference{
			TeacherID:    row.TeacherID,
			Day:          day,
			Slot:         row.Slot,
			Level:        level,
			AcademicYear: row.AcademicYear,
			Active:       true,
		})
	}
	return prefs, nil
}

// ReadFile opens path and hands it to read.
func ReadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

func parseActive(raw string) (bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return true, nil
	}
	active, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("active: %w", err)
	}
	return active, nil
}

func splitSections(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil
	}
	sections := make([]string, 0, len(fields))
	for _, field := range fields {
		sections = append(sections, strings.ToUpper(field))
	}
	return sections
}
