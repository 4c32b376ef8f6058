package scheduler

import "github.com/noah-isme/class-routine-api/internal/models"

type levelGrid [models.DaysPerWeek][models.SlotsPerDay]models.PreferenceLevel

// PreferenceIndex answers preference lookups for one academic year.
type PreferenceIndex struct {
	levels map[string]*levelGrid
}

// NewPreferenceIndex indexes the active preferences of academicYear. An empty
// year accepts every active row. Rows with an out of range day or slot are ignored.
func NewPreferenceIndex(prefs []models.TeacherPreference, academicYear string) *PreferenceIndex {
	idx := &PreferenceIndex{levels: make(map[string]*levelGrid)}
	for _, pref := range prefs {
		if !pref.Active {
			continue
		}
		if academicYear != "" && pref.AcademicYear != academicYear {
			continue
		}
		if !pref.Day.Valid() || !models.ValidSlot(pref.Slot) || !pref.Level.Valid() {
			continue
		}
		grid := idx.levels[pref.TeacherID]
		if grid == nil {
			grid = &levelGrid{}
			idx.levels[pref.TeacherID] = grid
		}
		grid[pref.Day.Index()][pref.Slot-1] = pref.Level
	}
	return idx
}

// Level returns the teacher's level for the slot, LOW when nothing was stated.
func (p *PreferenceIndex) Level(teacherID string, day models.WorkingDay, slot int) models.PreferenceLevel {
	if p == nil {
		return models.PreferenceLow
	}
	grid := p.levels[teacherID]
	if grid == nil || !day.Valid() || !models.ValidSlot(slot) {
		return models.PreferenceLow
	}
	if level := grid[day.Index()][slot-1]; level != "" {
		return level
	}
	return models.PreferenceLow
}
