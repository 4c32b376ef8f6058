package scheduler

import (
	"fmt"

	"github.com/noah-isme/class-routine-api/internal/models"
)

// target is the (teacher, course, semester, section) being placed. The course
// type is resolved once per assignment row.
type target struct {
	teacherID  string
	courseID   string
	courseCode string
	theory     bool
	semester   int
	section    string

	semIdx int
	secIdx int
}

func newTarget(a models.CourseAssignment, section string) target {
	return target{
		teacherID:  a.Teacher.ID,
		courseID:   a.Course.ID,
		courseCode: a.Course.Code,
		theory:     !a.Course.Type.AllowsParallelSections(),
		semester:   a.Semester,
		section:    section,
		semIdx:     a.Semester - 1,
		secIdx:     models.SectionIndex(section),
	}
}

// checker decides hard constraint feasibility. It only appends to conflicts and
// never touches occupancy.
type checker struct {
	prefs      *PreferenceIndex
	occ        *occupancy
	dailyLimit int
	conflicts  []models.RoutineConflict
}

func (c *checker) isAvailable(day models.WorkingDay, slot int, t target) bool {
	d, s := day.Index(), slot-1

	if c.prefs.Level(t.teacherID, day, slot) == models.PreferenceUnavailable {
		c.reject(models.ConflictPreference, day, slot, t, fmt.Sprintf("teacher %s is unavailable on %s slot %d", t.teacherID, day, slot))
		return false
	}
	if c.occ.teacherBusy(t.teacherID, d, s) {
		c.reject(models.ConflictTeacher, day, slot, t, fmt.Sprintf("teacher %s already teaches on %s slot %d", t.teacherID, day, slot))
		return false
	}
	if c.occ.sectionBusy(t.semIdx, t.secIdx, d, s) {
		c.reject(models.ConflictSection, day, slot, t, fmt.Sprintf("semester %d section %s already has a class on %s slot %d", t.semester, t.section, day, slot))
		return false
	}
	if c.occ.dailyCount(t.semIdx, t.secIdx, d) >= c.dailyLimit {
		c.reject(models.ConflictDailyLimit, day, slot, t, fmt.Sprintf("semester %d section %s reached %d classes on %s", t.semester, t.section, c.dailyLimit, day))
		return false
	}
	if c.occ.courseOnDay(t.courseID, t.semIdx, t.secIdx, d) {
		c.reject(models.ConflictCourseRepeat, day, slot, t, fmt.Sprintf("%s already meets semester %d section %s on %s", t.courseCode, t.semester, t.section, day))
		return false
	}
	if t.theory && c.occ.othersAt(t.semIdx, t.secIdx, d, s) > 0 {
		c.reject(models.ConflictParallelSection, day, slot, t, fmt.Sprintf("another section of semester %d has a class on %s slot %d", t.semester, day, slot))
		return false
	}
	return true
}

func (c *checker) reject(kind models.ConflictType, day models.WorkingDay, slot int, t target, description string) {
	c.conflicts = append(c.conflicts, models.RoutineConflict{
		Type:        kind,
		Description: description,
		CourseID:    t.courseID,
		CourseCode:  t.courseCode,
		TeacherID:   t.teacherID,
		Semester:    t.semester,
		Section:     t.section,
		Day:         day,
		Slot:        slot,
	})
}
