package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-routine-api/internal/models"
)

const testYear = "2024-2025"

func newTeacher(id string, rank models.AcademicRank) *models.Teacher {
	return &models.Teacher{ID: id, FullName: "Teacher " + id, Rank: rank, Active: true}
}

func newCourse(id string, kind models.CourseType, hours int) *models.Course {
	return &models.Course{ID: id, Code: "CSE-" + id, Name: "Course " + id, Type: kind, ContactHours: hours, Semester: 1}
}

func newAssignment(id string, teacher *models.Teacher, course *models.Course, semester int, sections ...string) models.CourseAssignment {
	return models.CourseAssignment{
		ID:           id,
		TeacherID:    teacher.ID,
		CourseID:     course.ID,
		Semester:     semester,
		Section:      sections[0],
		Sections:     sections,
		AcademicYear: testYear,
		Active:       true,
		Teacher:      teacher,
		Course:       course,
	}
}

// onlyAvailable marks every cell UNAVAILABLE for the teacher except the given ones.
func onlyAvailable(teacherID string, open ...[2]int) []models.TeacherPreference {
	allowed := make(map[[2]int]bool, len(open))
	for _, cell := range open {
		allowed[cell] = true
	}
	var prefs []models.TeacherPreference
	for _, day := range models.WorkingDays {
		for slot := 1; slot <= models.SlotsPerDay; slot++ {
			if allowed[[2]int{int(day), slot}] {
				continue
			}
			prefs = append(prefs, models.TeacherPreference{
				TeacherID:    teacherID,
				Day:          day,
				Slot:         slot,
				Level:        models.PreferenceUnavailable,
				AcademicYear: testYear,
				Active:       true,
			})
		}
	}
	return prefs
}

func countConflicts(result *Result, kind models.ConflictType) int {
	return result.ConflictCounts()[kind]
}

func assertRoutineInvariants(t *testing.T, result *Result, courses map[string]*models.Course, dailyLimit int) {
	t.Helper()

	type teacherCell struct {
		teacher   string
		day, slot int
	}
	type sectionCell struct {
		semester  int
		section   string
		day, slot int
	}
	type sectionDay struct {
		semester int
		section  string
		day      int
	}
	type courseDay struct {
		course   string
		semester int
		section  string
		day      int
	}
	type theoryCell struct {
		course    string
		semester  int
		day, slot int
	}

	teachers := map[teacherCell]int{}
	sections := map[sectionCell]int{}
	daily := map[sectionDay]int{}
	repeats := map[courseDay]int{}
	theory := map[theoryCell]map[string]bool{}
	placed := map[string]int{}

	for _, e := range result.Entries {
		teachers[teacherCell{e.TeacherID, int(e.Day), e.Slot}]++
		sections[sectionCell{e.Semester, e.Section, int(e.Day), e.Slot}]++
		daily[sectionDay{e.Semester, e.Section, int(e.Day)}]++
		repeats[courseDay{e.CourseID, e.Semester, e.Section, int(e.Day)}]++
		placed[fmt.Sprintf("%s/%d/%s", e.CourseID, e.Semester, e.Section)]++

		if courses[e.CourseID].Type == models.CourseTheory {
			key := theoryCell{e.CourseID, e.Semester, int(e.Day), e.Slot}
			if theory[key] == nil {
				theory[key] = map[string]bool{}
			}
			theory[key][e.Section] = true
		}
	}

	for key, n := range teachers {
		assert.LessOrEqualf(t, n, 1, "teacher double booked at %+v", key)
	}
	for key, n := range sections {
		assert.LessOrEqualf(t, n, 1, "section double booked at %+v", key)
	}
	for key, n := range daily {
		assert.LessOrEqualf(t, n, dailyLimit, "daily limit exceeded at %+v", key)
	}
	for key, n := range repeats {
		assert.LessOrEqualf(t, n, 1, "course repeated in a day at %+v", key)
	}
	for key, secs := range theory {
		assert.LessOrEqualf(t, len(secs), 1, "theory sections in parallel at %+v", key)
	}

	for _, skip := range result.Skipped {
		assert.Less(t, skip.Assigned, skip.Needed)
		assert.Equal(t, skip.Assigned, placed[fmt.Sprintf("%s/%d/%s", skip.CourseID, skip.Semester, skip.Section)])
	}
	assert.Equal(t, len(result.Entries), result.ScheduledCourses)
}

func TestGenerateSingleTheoryCourse(t *testing.T) {
	teacher := newTeacher("t1", models.RankLecturer)
	course := newCourse("c1", models.CourseTheory, 3)

	result, err := Generate(context.Background(), []models.CourseAssignment{newAssignment("a1", teacher, course, 1, "A")}, nil, Options{Seed: 42})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.Partial())
	assert.Equal(t, 3, result.ScheduledCourses)
	require.Len(t, result.Entries, 3)

	days := map[models.WorkingDay]bool{}
	for _, e := range result.Entries {
		assert.False(t, days[e.Day], "course placed twice on %s", e.Day)
		days[e.Day] = true
		assert.Equal(t, testYear, e.AcademicYear)
		assert.Equal(t, "A", e.Section)
	}
	assertRoutineInvariants(t, result, map[string]*models.Course{course.ID: course}, models.DailyLimit)
}

func TestGenerateTeacherFullyUnavailable(t *testing.T) {
	teacher := newTeacher("t1", models.RankLecturer)
	course := newCourse("c1", models.CourseTheory, 3)

	result, err := Generate(context.Background(),
		[]models.CourseAssignment{newAssignment("a1", teacher, course, 1, "A")},
		onlyAvailable(teacher.ID),
		Options{Seed: 7},
	)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Zero(t, result.ScheduledCourses)
	assert.Empty(t, result.Entries)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, models.SkippedPlacement{
		CourseID:   course.ID,
		CourseCode: course.Code,
		TeacherID:  teacher.ID,
		Section:    "A",
		Semester:   1,
		Assigned:   0,
		Needed:     3,
	}, result.Skipped[0])
	assert.Equal(t, models.DaysPerWeek*models.SlotsPerDay*models.MaxPlacementAttempts, countConflicts(result, models.ConflictPreference))
}

func TestGenerateTheorySectionsNeverRunInParallel(t *testing.T) {
	course := newCourse("c1", models.CourseTheory, 1)
	senior := newTeacher("t1", models.RankProfessor)
	junior := newTeacher("t2", models.RankLecturer)
	saturdayFirst := [2]int{int(models.Saturday), 1}

	t.Run("skipped when the only open cell is taken", func(t *testing.T) {
		prefs := append(onlyAvailable(senior.ID, saturdayFirst), onlyAvailable(junior.ID, saturdayFirst)...)
		result, err := Generate(context.Background(), []models.CourseAssignment{
			newAssignment("a2", junior, course, 2, "B"),
			newAssignment("a1", senior, course, 2, "A"),
		}, prefs, Options{Seed: 1})
		require.NoError(t, err)

		require.Len(t, result.Entries, 1)
		assert.Equal(t, "A", result.Entries[0].Section)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "B", result.Skipped[0].Section)
		assert.Positive(t, countConflicts(result, models.ConflictParallelSection))
	})

	t.Run("moved to another open cell", func(t *testing.T) {
		sundaySecond := [2]int{int(models.Sunday), 2}
		prefs := append(onlyAvailable(senior.ID, saturdayFirst), onlyAvailable(junior.ID, saturdayFirst, sundaySecond)...)
		result, err := Generate(context.Background(), []models.CourseAssignment{
			newAssignment("a1", senior, course, 2, "A"),
			newAssignment("a2", junior, course, 2, "B"),
		}, prefs, Options{Seed: 1})
		require.NoError(t, err)

		require.Len(t, result.Entries, 2)
		assert.Empty(t, result.Skipped)
		assert.Equal(t, models.Sunday, result.Entries[1].Day)
		assert.Equal(t, 2, result.Entries[1].Slot)
		assertRoutineInvariants(t, result, map[string]*models.Course{course.ID: course}, models.DailyLimit)
	})
}

func TestGenerateSessionalSectionsMayShareSlot(t *testing.T) {
	lab := newCourse("lab", models.CourseSessional, 1)
	first := newTeacher("t1", models.RankProfessor)
	second := newTeacher("t2", models.RankProfessor)
	open := [2]int{int(models.Monday), 4}

	prefs := append(onlyAvailable(first.ID, open), onlyAvailable(second.ID, open)...)
	result, err := Generate(context.Background(), []models.CourseAssignment{
		newAssignment("a1", first, lab, 3, "A"),
		newAssignment("a2", second, lab, 3, "B"),
	}, prefs, Options{Seed: 3})
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Empty(t, result.Skipped)
	for _, e := range result.Entries {
		assert.Equal(t, models.Monday, e.Day)
		assert.Equal(t, 4, e.Slot)
	}
	assert.Zero(t, countConflicts(result, models.ConflictParallelSection))
}

func TestGenerateDailyLimit(t *testing.T) {
	saturday := func(teacherID string, extra ...[2]int) []models.TeacherPreference {
		open := extra
		for slot := 1; slot <= models.SlotsPerDay; slot++ {
			open = append(open, [2]int{int(models.Saturday), slot})
		}
		return onlyAvailable(teacherID, open...)
	}

	build := func(lastExtra ...[2]int) ([]models.CourseAssignment, []models.TeacherPreference, map[string]*models.Course) {
		var rows []models.CourseAssignment
		var prefs []models.TeacherPreference
		courses := map[string]*models.Course{}
		for i := 1; i <= 6; i++ {
			teacher := newTeacher(fmt.Sprintf("t%d", i), models.RankLecturer)
			course := newCourse(fmt.Sprintf("c%d", i), models.CourseSessional, 1)
			courses[course.ID] = course
			rows = append(rows, newAssignment(fmt.Sprintf("a%d", i), teacher, course, 1, "A"))
			if i == 6 {
				prefs = append(prefs, saturday(teacher.ID, lastExtra...)...)
			} else {
				prefs = append(prefs, saturday(teacher.ID)...)
			}
		}
		return rows, prefs, courses
	}

	t.Run("sixth class is skipped when no other day is open", func(t *testing.T) {
		rows, prefs, courses := build()
		result, err := Generate(context.Background(), rows, prefs, Options{Seed: 11})
		require.NoError(t, err)

		assert.Equal(t, 5, result.ScheduledCourses)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "c6", result.Skipped[0].CourseID)
		assert.Positive(t, countConflicts(result, models.ConflictDailyLimit))
		assertRoutineInvariants(t, result, courses, models.DailyLimit)
	})

	t.Run("sixth class moves to another day", func(t *testing.T) {
		rows, prefs, courses := build([2]int{int(models.Tuesday), 8})
		result, err := Generate(context.Background(), rows, prefs, Options{Seed: 11})
		require.NoError(t, err)

		assert.Equal(t, 6, result.ScheduledCourses)
		assert.Empty(t, result.Skipped)
		last := result.Entries[len(result.Entries)-1]
		assert.Equal(t, "c6", last.CourseID)
		assert.Equal(t, models.Tuesday, last.Day)
		assert.Equal(t, 8, last.Slot)
		assertRoutineInvariants(t, result, courses, models.DailyLimit)
	})
}

func TestGenerateHonoursConfiguredDailyLimit(t *testing.T) {
	teacher := newTeacher("t1", models.RankLecturer)
	var rows []models.CourseAssignment
	courses := map[string]*models.Course{}
	for i := 0; i < 4; i++ {
		course := newCourse(fmt.Sprintf("c%d", i), models.CourseTheory, 1)
		courses[course.ID] = course
		rows = append(rows, newAssignment(fmt.Sprintf("a%d", i), teacher, course, 1, "A"))
	}
	var open [][2]int
	for slot := 1; slot <= models.SlotsPerDay; slot++ {
		open = append(open, [2]int{int(models.Wednesday), slot})
	}

	result, err := Generate(context.Background(), rows, onlyAvailable(teacher.ID, open...), Options{Seed: 5, DailyLimit: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, result.ScheduledCourses)
	assert.Len(t, result.Skipped, 1)
	assertRoutineInvariants(t, result, courses, 3)
}

func TestGeneratePrefersHighPreference(t *testing.T) {
	teacher := newTeacher("t1", models.RankLecturer)
	course := newCourse("c1", models.CourseTheory, 1)
	prefs := []models.TeacherPreference{{
		TeacherID: teacher.ID, Day: models.Monday, Slot: 9, Level: models.PreferenceHigh, AcademicYear: testYear, Active: true,
	}}

	for seed := int64(1); seed <= 5; seed++ {
		result, err := Generate(context.Background(), []models.CourseAssignment{newAssignment("a1", teacher, course, 1, "A")}, prefs, Options{Seed: seed})
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, models.Monday, result.Entries[0].Day)
		assert.Equal(t, 9, result.Entries[0].Slot)
	}
}

func TestGeneratePriorityOrder(t *testing.T) {
	open := [2]int{int(models.Sunday), 3}
	lecturer := newTeacher("lecturer", models.RankLecturer)
	professor := newTeacher("professor", models.RankProfessor)
	busyAssociate := newTeacher("busy", models.RankAssociateProfessor)
	idleAssociate := newTeacher("idle", models.RankAssociateProfessor)

	single := newCourse("single", models.CourseTheory, 1)
	extra := newCourse("extra", models.CourseTheory, 2)

	t.Run("higher rank first", func(t *testing.T) {
		prefs := append(onlyAvailable(lecturer.ID, open), onlyAvailable(professor.ID, open)...)
		result, err := Generate(context.Background(), []models.CourseAssignment{
			newAssignment("a1", lecturer, newCourse("x", models.CourseTheory, 1), 1, "A"),
			newAssignment("a2", professor, single, 1, "A"),
		}, prefs, Options{Seed: 9})
		require.NoError(t, err)

		require.Len(t, result.Entries, 1)
		assert.Equal(t, professor.ID, result.Entries[0].TeacherID)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, lecturer.ID, result.Skipped[0].TeacherID)
	})

	t.Run("lighter load first within a rank", func(t *testing.T) {
		prefs := append(onlyAvailable(busyAssociate.ID, open), onlyAvailable(idleAssociate.ID, open)...)
		result, err := Generate(context.Background(), []models.CourseAssignment{
			newAssignment("a1", busyAssociate, extra, 4, "A"),
			newAssignment("a2", idleAssociate, single, 4, "A"),
		}, prefs, Options{Seed: 9})
		require.NoError(t, err)

		require.NotEmpty(t, result.Entries)
		assert.Equal(t, idleAssociate.ID, result.Entries[0].TeacherID)
	})
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	rows, _, _ := fixtureDepartment()

	first, err := Generate(context.Background(), rows, nil, Options{Seed: 2024})
	require.NoError(t, err)
	second, err := Generate(context.Background(), rows, nil, Options{Seed: 2024})
	require.NoError(t, err)

	assert.Equal(t, int64(2024), first.Seed)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Skipped, second.Skipped)
	assert.Equal(t, len(first.Conflicts), len(second.Conflicts))
}

func TestGenerateReportsDerivedSeed(t *testing.T) {
	rows, _, _ := fixtureDepartment()

	result, err := Generate(context.Background(), rows, nil, Options{})
	require.NoError(t, err)
	assert.NotZero(t, result.Seed)

	replay, err := Generate(context.Background(), rows, nil, Options{Seed: result.Seed})
	require.NoError(t, err)
	assert.Equal(t, result.Entries, replay.Entries)
}

func TestGenerateInvariantsAcrossSeeds(t *testing.T) {
	rows, prefs, courses := fixtureDepartment()

	for seed := int64(1); seed <= 20; seed++ {
		result, err := Generate(context.Background(), rows, prefs, Options{Seed: seed})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assertRoutineInvariants(t, result, courses, models.DailyLimit)

		index := NewPreferenceIndex(prefs, testYear)
		for _, e := range result.Entries {
			assert.NotEqual(t, models.PreferenceUnavailable, index.Level(e.TeacherID, e.Day, e.Slot))
		}
	}
}

func TestGenerateSinkFailureBecomesSchedulingConflict(t *testing.T) {
	teacher := newTeacher("t1", models.RankLecturer)
	course := newCourse("c1", models.CourseTheory, 2)

	calls := 0
	var stored []models.ScheduleEntry
	sink := SinkFunc(func(_ context.Context, entry models.ScheduleEntry) error {
		calls++
		if calls == 1 {
			return errors.New("insert failed")
		}
		stored = append(stored, entry)
		return nil
	})

	result, err := Generate(context.Background(), []models.CourseAssignment{newAssignment("a1", teacher, course, 1, "A")}, nil, Options{Seed: 4, Sink: sink})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, result.ScheduledCourses)
	assert.Equal(t, stored, result.Entries)
	assert.Equal(t, 1, countConflicts(result, models.ConflictScheduling))
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 1, result.Skipped[0].Assigned)
	assert.Equal(t, 2, result.Skipped[0].Needed)
}

func TestGenerateFatalErrors(t *testing.T) {
	teacher := newTeacher("t1", models.RankLecturer)
	course := newCourse("c1", models.CourseTheory, 1)

	inactive := newAssignment("a1", teacher, course, 1, "A")
	inactive.Active = false

	dangling := newAssignment("a2", teacher, course, 1, "A")
	dangling.Course = nil

	badSemester := newAssignment("a3", teacher, course, 9, "A")
	badSection := newAssignment("a4", teacher, course, 1, "a")

	noSection := newAssignment("a5", teacher, course, 1, "A")
	noSection.Section = ""
	noSection.Sections = nil

	otherYear := newAssignment("a6", teacher, course, 1, "A")
	otherYear.AcademicYear = "1999-2000"

	cases := []struct {
		name string
		rows []models.CourseAssignment
		want error
	}{
		{name: "empty", rows: nil, want: ErrNoAssignments},
		{name: "only inactive", rows: []models.CourseAssignment{inactive}, want: ErrNoAssignments},
		{name: "unresolved course", rows: []models.CourseAssignment{dangling}, want: ErrUnresolvedReference},
		{name: "semester out of range", rows: []models.CourseAssignment{badSemester}, want: ErrInvalidAssignment},
		{name: "section not a letter", rows: []models.CourseAssignment{badSection}, want: ErrInvalidAssignment},
		{name: "no section", rows: []models.CourseAssignment{noSection}, want: ErrInvalidAssignment},
		{name: "only other years", rows: []models.CourseAssignment{otherYear}, want: ErrNoAssignments},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Generate(context.Background(), tc.rows, nil, Options{Seed: 1, AcademicYear: testYear})
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGenerateIgnoresOtherAcademicYears(t *testing.T) {
	teacher := newTeacher("t1", models.RankLecturer)
	current := newCourse("c1", models.CourseTheory, 2)
	stale := newCourse("c2", models.CourseTheory, 3)

	old := newAssignment("a2", teacher, stale, 1, "A")
	old.AcademicYear = "1999-2000"
	rows := []models.CourseAssignment{newAssignment("a1", teacher, current, 1, "A"), old}

	for _, opts := range []Options{{Seed: 3}, {Seed: 3, AcademicYear: testYear}} {
		result, err := Generate(context.Background(), rows, nil, opts)
		require.NoError(t, err)

		assert.Equal(t, testYear, result.AcademicYear)
		assert.Equal(t, 2, result.ScheduledCourses)
		assert.Empty(t, result.Skipped)
		for _, e := range result.Entries {
			assert.Equal(t, current.ID, e.CourseID)
			assert.Equal(t, testYear, e.AcademicYear)
		}
	}
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	rows, _, _ := fixtureDepartment()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Generate(ctx, rows, nil, Options{Seed: 1})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

// fixtureDepartment is a small department with mixed course types and sections.
func fixtureDepartment() ([]models.CourseAssignment, []models.TeacherPreference, map[string]*models.Course) {
	ranks := []models.AcademicRank{models.RankProfessor, models.RankAssociateProfessor, models.RankAssistantProfessor, models.RankLecturer}
	kinds := []models.CourseType{models.CourseTheory, models.CourseTheory, models.CourseSessional, models.CourseTheory, models.CourseProject}

	courses := map[string]*models.Course{}
	var rows []models.CourseAssignment
	var prefs []models.TeacherPreference

	for i := 0; i < 8; i++ {
		teacher := newTeacher(fmt.Sprintf("t%d", i), ranks[i%len(ranks)])
		for j := 0; j < 2; j++ {
			n := i*2 + j
			course := newCourse(fmt.Sprintf("c%d", n), kinds[n%len(kinds)], 2+n%3)
			courses[course.ID] = course
			semester := 1 + n%3
			rows = append(rows, newAssignment(fmt.Sprintf("a%d", n), teacher, course, semester, "A", "B", "C"))
		}
		prefs = append(prefs,
			models.TeacherPreference{TeacherID: teacher.ID, Day: models.WorkingDays[i%5], Slot: 1 + i%9, Level: models.PreferenceUnavailable, AcademicYear: testYear, Active: true},
			models.TeacherPreference{TeacherID: teacher.ID, Day: models.WorkingDays[(i+2)%5], Slot: 1 + (i+4)%9, Level: models.PreferenceHigh, AcademicYear: testYear, Active: true},
		)
	}
	return rows, prefs, courses
}
