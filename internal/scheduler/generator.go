// Package scheduler builds a weekly class routine from course assignments and
// teacher preferences using a greedy placement with bounded retries.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-routine-api/internal/models"
)

// Fatal run errors.
var (
	ErrNoAssignments       = errors.New("no course assignments to schedule")
	ErrUnresolvedReference = errors.New("assignment references an unresolved teacher or course")
	ErrInvalidAssignment   = errors.New("assignment has an invalid semester or section")
)

// EntrySink receives every committed entry. A returned error is recorded as a
// scheduling conflict and the entry is not counted.
type EntrySink interface {
	Write(ctx context.Context, entry models.ScheduleEntry) error
}

// SinkFunc adapts a function to EntrySink.
type SinkFunc func(ctx context.Context, entry models.ScheduleEntry) error

// Write implements EntrySink.
func (f SinkFunc) Write(ctx context.Context, entry models.ScheduleEntry) error {
	return f(ctx, entry)
}

// Options tunes a run. Zero values select the defaults.
type Options struct {
	// AcademicYear stamps produced entries and filters preferences. Defaults to
	// the year of the first assignment.
	AcademicYear string
	// Seed drives shuffling and tie breaking. Zero derives one from the clock;
	// the seed actually used is reported in Result.Seed.
	Seed        int64
	MaxAttempts int
	DailyLimit  int
	Sink        EntrySink
	Logger      *zap.Logger
}

func (o Options) withDefaults(assignments []models.CourseAssignment) Options {
	if o.AcademicYear == "" && len(assignments) > 0 {
		o.AcademicYear = assignments[0].AcademicYear
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = models.MaxPlacementAttempts
	}
	if o.DailyLimit <= 0 || o.DailyLimit > models.SlotsPerDay {
		o.DailyLimit = models.DailyLimit
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Generate places every active assignment row of the run's academic year on the
// weekly grid. Inactive rows and rows of other years are ignored. Teacher and
// Course must be resolved on each row.
func Generate(ctx context.Context, assignments []models.CourseAssignment, prefs []models.TeacherPreference, opts Options) (*Result, error) {
	active := make([]models.CourseAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.Active {
			active = append(active, a)
		}
	}
	opts = opts.withDefaults(active)

	rows := make([]models.CourseAssignment, 0, len(active))
	for _, a := range active {
		if a.AcademicYear != "" && a.AcademicYear != opts.AcademicYear {
			opts.Logger.Debug("assignment outside academic year ignored",
				zap.String("assignment", a.ID),
				zap.String("academic_year", a.AcademicYear),
			)
			continue
		}
		rows = append(rows, a)
	}
	if len(rows) == 0 {
		return nil, ErrNoAssignments
	}
	if err := validateRows(rows); err != nil {
		return nil, err
	}

	r := newRun(rows, prefs, opts)

	opts.Logger.Debug("routine run started",
		zap.String("academic_year", opts.AcademicYear),
		zap.Int64("seed", opts.Seed),
		zap.Int("assignments", len(rows)),
	)

	for _, a := range r.prioritize(rows) {
		for _, section := range a.OwnedSections() {
			if err := r.placeSection(ctx, a, section); err != nil {
				return nil, err
			}
		}
	}

	opts.Logger.Debug("routine run finished",
		zap.String("academic_year", opts.AcademicYear),
		zap.Int("scheduled", r.result.ScheduledCourses),
		zap.Int("skipped", len(r.result.Skipped)),
		zap.Int("conflicts", len(r.checker.conflicts)),
	)

	r.result.Conflicts = r.checker.conflicts
	r.result.Success = true
	return r.result, nil
}

func validateRows(rows []models.CourseAssignment) error {
	for _, a := range rows {
		if a.Teacher == nil || a.Course == nil || a.Teacher.ID == "" || a.Course.ID == "" {
			return fmt.Errorf("%w: assignment %s", ErrUnresolvedReference, a.ID)
		}
		if !models.ValidSemester(a.Semester) {
			return fmt.Errorf("%w: assignment %s semester %d", ErrInvalidAssignment, a.ID, a.Semester)
		}
		sections := a.OwnedSections()
		if len(sections) == 0 {
			return fmt.Errorf("%w: assignment %s has no section", ErrInvalidAssignment, a.ID)
		}
		for _, section := range sections {
			if !models.ValidSection(section) {
				return fmt.Errorf("%w: assignment %s section %q", ErrInvalidAssignment, a.ID, section)
			}
		}
	}
	return nil
}

// --- Run state ---

type run struct {
	opts    Options
	rng     *rand.Rand
	occ     *occupancy
	loads   *LoadTracker
	checker *checker
	scorer  *scorer
	result  *Result
}

func newRun(rows []models.CourseAssignment, prefs []models.TeacherPreference, opts Options) *run {
	rng := rand.New(rand.NewSource(opts.Seed))
	index := NewPreferenceIndex(prefs, opts.AcademicYear)
	occ := newOccupancy()
	return &run{
		opts:    opts,
		rng:     rng,
		occ:     occ,
		loads:   NewLoadTracker(rows),
		checker: &checker{prefs: index, occ: occ, dailyLimit: opts.DailyLimit},
		scorer:  &scorer{prefs: index, occ: occ, dailyLimit: opts.DailyLimit, rng: rng},
		result: &Result{
			AcademicYear: opts.AcademicYear,
			Seed:         opts.Seed,
			Skipped:      []models.SkippedPlacement{},
			Entries:      []models.ScheduleEntry{},
		},
	}
}

// prioritize orders rows by rank, most senior first, then by lighter initial load.
func (r *run) prioritize(rows []models.CourseAssignment) []models.CourseAssignment {
	ordered := make([]models.CourseAssignment, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := ordered[i].Teacher.Rank.Order(), ordered[j].Teacher.Rank.Order()
		if ri != rj {
			return ri > rj
		}
		return r.loads.Initial(ordered[i].Teacher.ID) < r.loads.Initial(ordered[j].Teacher.ID)
	})
	return ordered
}

func (r *run) placeSection(ctx context.Context, a models.CourseAssignment, section string) error {
	t := newTarget(a, section)
	needed := a.Course.ContactHours
	assigned := 0

	for hour := 0; hour < needed; hour++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("routine run aborted: %w", err)
		}

		day, slot, ok := r.findSlot(t)
		if !ok {
			break
		}

		entry := models.ScheduleEntry{
			CourseID:     t.courseID,
			TeacherID:    t.teacherID,
			Day:          day,
			Slot:         slot,
			Semester:     t.semester,
			Section:      t.section,
			AcademicYear: r.opts.AcademicYear,
		}
		if r.opts.Sink != nil {
			if err := r.opts.Sink.Write(ctx, entry); err != nil {
				r.opts.Logger.Warn("failed to persist routine entry",
					zap.String("course", t.courseCode),
					zap.Int("semester", t.semester),
					zap.String("section", t.section),
					zap.Error(err),
				)
				r.checker.reject(models.ConflictScheduling, day, slot, t, fmt.Sprintf("failed to persist %s for semester %d section %s: %v", t.courseCode, t.semester, t.section, err))
				continue
			}
		}

		r.occ.reserve(t.teacherID, t.courseID, t.semIdx, t.secIdx, day.Index(), slot-1)
		r.loads.Add(t.teacherID, 1)
		r.result.ScheduledCourses++
		r.result.Entries = append(r.result.Entries, entry)
		assigned++
	}

	if assigned < needed {
		r.opts.Logger.Debug("routine placement skipped",
			zap.String("course", t.courseCode),
			zap.Int("semester", t.semester),
			zap.String("section", t.section),
			zap.Int("assigned", assigned),
			zap.Int("needed", needed),
		)
		r.result.Skipped = append(r.result.Skipped, models.SkippedPlacement{
			CourseID:   t.courseID,
			CourseCode: t.courseCode,
			TeacherID:  t.teacherID,
			Section:    t.section,
			Semester:   t.semester,
			Assigned:   assigned,
			Needed:     needed,
		})
	}
	return nil
}

// findSlot scans the shuffled grid up to MaxAttempts times and returns the best
// feasible cell.
func (r *run) findSlot(t target) (models.WorkingDay, int, bool) {
	days := make([]models.WorkingDay, len(models.WorkingDays))
	slots := make([]int, models.SlotsPerDay)

	for attempt := 0; attempt < r.opts.MaxAttempts; attempt++ {
		copy(days, models.WorkingDays)
		for i := range slots {
			slots[i] = i + 1
		}
		r.rng.Shuffle(len(days), func(i, j int) { days[i], days[j] = days[j], days[i] })
		r.rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

		var (
			bestDay   models.WorkingDay
			bestSlot  int
			bestScore float64
			found     bool
		)
		for _, day := range days {
			for _, slot := range slots {
				if !r.checker.isAvailable(day, slot, t) {
					continue
				}
				score := r.scorer.score(day, slot, t)
				if !found || score > bestScore {
					bestDay, bestSlot, bestScore, found = day, slot, score, true
				}
			}
		}
		if found {
			return bestDay, bestSlot, true
		}
	}
	return 0, 0, false
}
