package scheduler

import "github.com/noah-isme/class-routine-api/internal/models"

type slotGrid [models.DaysPerWeek][models.SlotsPerDay]bool

type courseDayKey struct {
	courseID string
	semester int
	section  int
	day      int
}

// occupancy is the per-run placement state. Semester and section are zero based.
type occupancy struct {
	sections   [models.MaxSemesters][models.MaxSections]slotGrid
	daily      [models.MaxSemesters][models.MaxSections][models.DaysPerWeek]int
	teachers   map[string]*slotGrid
	courseDays map[courseDayKey]struct{}
}

func newOccupancy() *occupancy {
	return &occupancy{
		teachers:   make(map[string]*slotGrid),
		courseDays: make(map[courseDayKey]struct{}),
	}
}

func (o *occupancy) teacherBusy(teacherID string, day, slot int) bool {
	grid := o.teachers[teacherID]
	return grid != nil && grid[day][slot]
}

func (o *occupancy) sectionBusy(semester, section, day, slot int) bool {
	return o.sections[semester][section][day][slot]
}

func (o *occupancy) dailyCount(semester, section, day int) int {
	return o.daily[semester][section][day]
}

func (o *occupancy) courseOnDay(courseID string, semester, section, day int) bool {
	_, ok := o.courseDays[courseDayKey{courseID: courseID, semester: semester, section: section, day: day}]
	return ok
}

// othersAt counts sections of the semester, other than section, holding (day, slot).
func (o *occupancy) othersAt(semester, section, day, slot int) int {
	count := 0
	for other := 0; other < models.MaxSections; other++ {
		if other != section && o.sections[semester][other][day][slot] {
			count++
		}
	}
	return count
}

func (o *occupancy) reserve(teacherID, courseID string, semester, section, day, slot int) {
	grid := o.teachers[teacherID]
	if grid == nil {
		grid = &slotGrid{}
		o.teachers[teacherID] = grid
	}
	grid[day][slot] = true
	o.sections[semester][section][day][slot] = true
	o.daily[semester][section][day]++
	o.courseDays[courseDayKey{courseID: courseID, semester: semester, section: section, day: day}] = struct{}{}
}
