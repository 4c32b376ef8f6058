package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed dimensions of the weekly grid.
const (
	DaysPerWeek  = 5
	SlotsPerDay  = 9
	MaxSemesters = 8
	MaxSections  = 26

	// DailyLimit caps the entries of one (semester, section, day).
	DailyLimit = 5
	// MaxPlacementAttempts bounds the grid scans made for one placement.
	MaxPlacementAttempts = 3
)

// WorkingDay is one of the five teaching days, Saturday through Wednesday.
type WorkingDay int

const (
	Saturday WorkingDay = iota + 1
	Sunday
	Monday
	Tuesday
	Wednesday
)

// WorkingDays lists the teaching days in calendar order.
var WorkingDays = []WorkingDay{Saturday, Sunday, Monday, Tuesday, Wednesday}

var dayNames = [...]string{"", "Saturday", "Sunday", "Monday", "Tuesday", "Wednesday"}

// Valid reports whether d is one of the teaching days.
func (d WorkingDay) Valid() bool {
	return d >= Saturday && d <= Wednesday
}

// Index returns the zero based position of d in the week.
func (d WorkingDay) Index() int {
	return int(d) - 1
}

func (d WorkingDay) String() string {
	if !d.Valid() {
		return fmt.Sprintf("WorkingDay(%d)", int(d))
	}
	return dayNames[d]
}

// MarshalText renders the day name.
func (d WorkingDay) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid working day %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText accepts a day name (any case, full or three letter) or its ordinal.
func (d *WorkingDay) UnmarshalText(text []byte) error {
	parsed, err := ParseWorkingDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseWorkingDay converts user input into a WorkingDay.
func ParseWorkingDay(raw string) (WorkingDay, error) {
	value := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(value); err == nil {
		day := WorkingDay(n)
		if !day.Valid() {
			return 0, fmt.Errorf("working day %d out of range", n)
		}
		return day, nil
	}
	for _, day := range WorkingDays {
		name := day.String()
		if strings.EqualFold(value, name) || (len(value) == 3 && strings.EqualFold(value, name[:3])) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown working day %q", raw)
}

// TimeBand groups slots by time of day.
type TimeBand string

const (
	BandMorning   TimeBand = "morning"
	BandMidday    TimeBand = "midday"
	BandAfternoon TimeBand = "afternoon"
)

// Weight is the scoring bonus of a band; earlier is preferred.
func (b TimeBand) Weight() int {
	switch b {
	case BandMorning:
		return 3
	case BandMidday:
		return 2
	case BandAfternoon:
		return 1
	default:
		return 0
	}
}

// TimeSlot is one assignable teaching period of a day.
type TimeSlot struct {
	ID         int      `json:"id"`
	Period     string   `json:"period"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Band       TimeBand `json:"band"`
	BreakAfter bool     `json:"break_after"`
}

// Label renders the display range of the slot.
func (s TimeSlot) Label() string {
	return s.Start + "-" + s.End
}

// TimeSlots is the daily timetable. Breaks follow slots 3 and 6 and are never assignable.
var TimeSlots = []TimeSlot{
	{ID: 1, Period: "1st", Start: "08:00", End: "08:50", Band: BandMorning},
	{ID: 2, Period: "2nd", Start: "08:50", End: "09:40", Band: BandMorning},
	{ID: 3, Period: "3rd", Start: "09:40", End: "10:30", Band: BandMorning, BreakAfter: true},
	{ID: 4, Period: "4th", Start: "10:50", End: "11:40", Band: BandMidday},
	{ID: 5, Period: "5th", Start: "11:40", End: "12:30", Band: BandMidday},
	{ID: 6, Period: "6th", Start: "12:30", End: "13:20", Band: BandMidday, BreakAfter: true},
	{ID: 7, Period: "7th", Start: "14:00", End: "14:50", Band: BandAfternoon},
	{ID: 8, Period: "8th", Start: "14:50", End: "15:40", Band: BandAfternoon},
	{ID: 9, Period: "9th", Start: "15:40", End: "16:30", Band: BandAfternoon},
}

// SlotByID looks up a slot by its 1 based id.
func SlotByID(id int) (TimeSlot, bool) {
	if !ValidSlot(id) {
		return TimeSlot{}, false
	}
	return TimeSlots[id-1], true
}

// ValidSlot reports whether id names an assignable slot.
func ValidSlot(id int) bool {
	return id >= 1 && id <= SlotsPerDay
}

// PreferenceLevel is a teacher's stated desirability of a slot.
type PreferenceLevel string

const (
	PreferenceHigh        PreferenceLevel = "HIGH"
	PreferenceMedium      PreferenceLevel = "MEDIUM"
	PreferenceLow         PreferenceLevel = "LOW"
	PreferenceUnavailable PreferenceLevel = "UNAVAILABLE"
)

// Weight returns the scoring weight of the level.
func (p PreferenceLevel) Weight() int {
	switch p {
	case PreferenceHigh:
		return 3
	case PreferenceMedium:
		return 2
	case PreferenceLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is a known level.
func (p PreferenceLevel) Valid() bool {
	switch p {
	case PreferenceHigh, PreferenceMedium, PreferenceLow, PreferenceUnavailable:
		return true
	}
	return false
}

// ParsePreferenceLevel normalises user input; an empty value means LOW.
func ParsePreferenceLevel(raw string) (PreferenceLevel, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return PreferenceLow, nil
	}
	level := PreferenceLevel(value)
	if !level.Valid() {
		return "", fmt.Errorf("unknown preference level %q", raw)
	}
	return level, nil
}

// CourseType classifies how a course is taught.
type CourseType string

const (
	CourseTheory    CourseType = "theory"
	CourseSessional CourseType = "sessional"
	CourseThesis    CourseType = "thesis"
	CourseProject   CourseType = "project"
)

// Valid reports whether t is a known course type.
func (t CourseType) Valid() bool {
	switch t {
	case CourseTheory, CourseSessional, CourseThesis, CourseProject:
		return true
	}
	return false
}

// AllowsParallelSections reports whether sections of one semester may share a slot.
func (t CourseType) AllowsParallelSections() bool {
	return t != CourseTheory
}

// AcademicRank orders teachers for placement priority.
type AcademicRank string

const (
	RankProfessor          AcademicRank = "Professor"
	RankAssociateProfessor AcademicRank = "Associate Professor"
	RankAssistantProfessor AcademicRank = "Assistant Professor"
	RankLecturer           AcademicRank = "Lecturer"
)

// Order returns a comparable seniority; higher is more senior and unknown ranks sort last.
func (r AcademicRank) Order() int {
	switch r {
	case RankProfessor:
		return 4
	case RankAssociateProfessor:
		return 3
	case RankAssistantProfessor:
		return 2
	case RankLecturer:
		return 1
	default:
		return 0
	}
}

// ValidSemester reports whether n is a semester ordinal.
func ValidSemester(n int) bool {
	return n >= 1 && n <= MaxSemesters
}

// ValidSection reports whether s is a single upper case letter.
func ValidSection(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

// SectionIndex returns the zero based index of a section letter.
func SectionIndex(s string) int {
	return int(s[0] - 'A')
}

// SectionLetter is the inverse of SectionIndex.
func SectionLetter(idx int) string {
	return string(rune('A' + idx))
}

// ConflictType tags why a placement was refused or failed.
type ConflictType string

const (
	ConflictTeacher         ConflictType = "teacher"
	ConflictSection         ConflictType = "section"
	ConflictPreference      ConflictType = "preference"
	ConflictDailyLimit      ConflictType = "daily_limit"
	ConflictCourseRepeat    ConflictType = "course_repeat"
	ConflictParallelSection ConflictType = "parallel_section"
	ConflictScheduling      ConflictType = "scheduling"
)

// ConflictTypes lists every conflict tag.
var ConflictTypes = []ConflictType{
	ConflictTeacher,
	ConflictSection,
	ConflictPreference,
	ConflictDailyLimit,
	ConflictCourseRepeat,
	ConflictParallelSection,
	ConflictScheduling,
}

// RoutineConflict is a diagnostic record of a rejected candidate or failed write.
type RoutineConflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	CourseID    string       `json:"course_id,omitempty"`
	CourseCode  string       `json:"course_code,omitempty"`
	TeacherID   string       `json:"teacher_id,omitempty"`
	Semester    int          `json:"semester,omitempty"`
	Section     string       `json:"section,omitempty"`
	Day         WorkingDay   `json:"day,omitempty"`
	Slot        int          `json:"slot,omitempty"`
}

// SkippedPlacement reports a section whose contact hours could not all be placed.
type SkippedPlacement struct {
	CourseID   string `json:"course_id"`
	CourseCode string `json:"course_code"`
	TeacherID  string `json:"teacher_id"`
	Section    string `json:"section"`
	Semester   int    `json:"semester"`
	Assigned   int    `json:"assigned"`
	Needed     int    `json:"needed"`
}
