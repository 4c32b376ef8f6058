package csvio

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/class-routine-api/internal/models"
)

type entryRow struct {
	AcademicYear string `csv:"academic_year"`
	Semester     int    `csv:"semester"`
	Section      string `csv:"section"`
	Day          string `csv:"day"`
	Slot         int    `csv:"slot"`
	Time         string `csv:"time"`
	CourseCode   string `csv:"course_code"`
	CourseName   string `csv:"course_name"`
	CourseType   string `csv:"course_type"`
	TeacherID    string `csv:"teacher_id"`
	TeacherName  string `csv:"teacher_name"`
}

// WriteEntries writes one CSV row per entry, header included.
func WriteEntries(w io.Writer, entries []models.ScheduleEntryDetail) error {
	rows := make([]entryRow, 0, len(entries))
	for _, entry := range entries {
		var label string
		if slot, ok := models.SlotByID(entry.Slot); ok {
			label = slot.Label()
		}
		rows = append(rows, entryRow{
			AcademicYear: entry.AcademicYear,
			Semester:     entry.Semester,
			Section:      entry.Section,
			Day:          entry.Day.String(),
			Slot:         entry.Slot,
			Time:         label,
			CourseCode:   entry.CourseCode,
			CourseName:   entry.CourseName,
			CourseType:   string(entry.CourseType),
			TeacherID:    entry.TeacherID,
			TeacherName:  entry.TeacherName,
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	return nil
}

// Describe joins entries with their course and teacher for display.
func Describe(entries []models.ScheduleEntry, teachers []models.Teacher, courses []models.Course) []models.ScheduleEntryDetail {
	teacherByID := make(map[string]models.Teacher, len(teachers))
	for _, teacher := range teachers {
		teacherByID[teacher.ID] = teacher
	}
	courseByID := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		courseByID[course.ID] = course
	}
	details := make([]models.ScheduleEntryDetail, 0, len(entries))
	for _, entry := range entries {
		course := courseByID[entry.CourseID]
		details = append(details, models.ScheduleEntryDetail{
			ScheduleEntry: entry,
			CourseCode:    course.Code,
			CourseName:    course.Name,
			CourseType:    course.Type,
			TeacherName:   teacherByID[entry.TeacherID].FullName,
		})
	}
	return details
}
