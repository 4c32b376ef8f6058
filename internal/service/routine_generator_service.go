package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/class-routine-api/internal/csvio"
	"github.com/noah-isme/class-routine-api/internal/dto"
	"github.com/noah-isme/class-routine-api/internal/models"
	"github.com/noah-isme/class-routine-api/internal/scheduler"
	"github.com/noah-isme/class-routine-api/pkg/cache"
	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
	"github.com/noah-isme/class-routine-api/pkg/export"
	"github.com/noah-isme/class-routine-api/pkg/jobs"
)

// JobTypeGenerateRoutine tags queued generation runs.
const JobTypeGenerateRoutine = "routine.generate"

type assignmentLister interface {
	ListActiveByAcademicYear(ctx context.Context, academicYear string) ([]models.CourseAssignment, error)
}

type teacherBatchReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Teacher, error)
}

type courseBatchReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

type preferenceLister interface {
	ListActiveByAcademicYear(ctx context.Context, academicYear string) ([]models.TeacherPreference, error)
}

type scheduleEntryStore interface {
	DeleteByAcademicYear(ctx context.Context, exec sqlx.ExtContext, academicYear string) (int64, error)
	Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	ListByAcademicYear(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, error)
}

type routineSessionStore interface {
	Create(ctx context.Context, session *models.RoutineSession) error
	Finish(ctx context.Context, session *models.RoutineSession) error
	FindByID(ctx context.Context, id string) (*models.RoutineSession, error)
	ListByAcademicYear(ctx context.Context, academicYear string, limit int) ([]models.RoutineSession, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type runLocker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (*cache.Lease, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type timetableRenderer interface {
	Render(title string, tables []export.Timetable) ([]byte, error)
}

// RoutineGeneratorConfig governs generation runs.
type RoutineGeneratorConfig struct {
	MaxAttempts   int
	DailyLimit    int
	Transactional bool
	RunTimeout    time.Duration
	LockTTL       time.Duration
	GridCacheTTL  time.Duration
}

// RoutineGeneratorParams groups constructor dependencies.
type RoutineGeneratorParams struct {
	Assignments assignmentLister
	Teachers    teacherBatchReader
	Courses     courseBatchReader
	Preferences preferenceLister
	Entries     scheduleEntryStore
	Sessions    routineSessionStore
	Tx          txProvider
	Locker      runLocker
	Cache       *CacheService
	Metrics     *MetricsService
	PDF         timetableRenderer
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      RoutineGeneratorConfig
}

// RoutineGeneratorService runs the routine generator against stored data and serves its output.
type RoutineGeneratorService struct {
	assignments assignmentLister
	teachers    teacherBatchReader
	courses     courseBatchReader
	prefs       preferenceLister
	entries     scheduleEntryStore
	sessions    routineSessionStore
	tx          txProvider
	locker      runLocker
	cache       *CacheService
	metrics     *MetricsService
	pdf         timetableRenderer
	queue       jobEnqueuer
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         RoutineGeneratorConfig
}

type routineJobPayload struct {
	SessionID string
	Request   dto.GenerateRoutineRequest
	Lease     *cache.Lease
}

// NewRoutineGeneratorService wires generator dependencies.
func NewRoutineGeneratorService(params RoutineGeneratorParams) *RoutineGeneratorService {
	cfg := params.Config
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = models.MaxPlacementAttempts
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = models.DailyLimit
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * cfg.RunTimeout
	}
	if cfg.GridCacheTTL <= 0 {
		cfg.GridCacheTTL = 10 * time.Minute
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locker := params.Locker
	if locker == nil {
		locker = cache.NewLocker(nil, "routine")
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &RoutineGeneratorService{
		assignments: params.Assignments,
		teachers:    params.Teachers,
		courses:     params.Courses,
		prefs:       params.Preferences,
		entries:     params.Entries,
		sessions:    params.Sessions,
		tx:          params.Tx,
		locker:      locker,
		cache:       params.Cache,
		metrics:     params.Metrics,
		pdf:         pdf,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// SetQueue attaches the background queue used by GenerateAsync.
func (s *RoutineGeneratorService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Generate clears the academic year's routine and builds a new one.
func (s *RoutineGeneratorService) Generate(ctx context.Context, req dto.GenerateRoutineRequest, triggeredBy string) (*dto.GenerateRoutineResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid routine generation payload")
	}
	lease, err := s.acquire(ctx, req.AcademicYear)
	if err != nil {
		return nil, err
	}
	defer s.release(lease)

	session, err := s.openSession(ctx, req.AcademicYear, triggeredBy)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, session, req)
}

// GenerateAsync queues a run and returns immediately. The academic year stays
// locked until the queued run finishes.
func (s *RoutineGeneratorService) GenerateAsync(ctx context.Context, req dto.GenerateRoutineRequest, triggeredBy string) (*dto.GenerateRoutineAccepted, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid routine generation payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "routine queue unavailable")
	}
	lease, err := s.acquire(ctx, req.AcademicYear)
	if err != nil {
		return nil, err
	}
	session, err := s.openSession(ctx, req.AcademicYear, triggeredBy)
	if err != nil {
		s.release(lease)
		return nil, err
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeGenerateRoutine,
		Payload: routineJobPayload{SessionID: session.ID, Request: req, Lease: lease},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.closeSession(ctx, session, nil, err)
		s.release(lease)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Clone(appErrors.ErrTooManyRequests, "routine queue is full")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue routine run")
	}

	s.logger.Info("routine run queued",
		zap.String("job_id", job.ID),
		zap.String("session_id", session.ID),
		zap.String("academic_year", req.AcademicYear),
	)
	return &dto.GenerateRoutineAccepted{JobID: job.ID, SessionID: session.ID, AcademicYear: req.AcademicYear}, nil
}

// HandleJob executes a queued run. Failures are recorded on the session, so
// the job is never retried.
func (s *RoutineGeneratorService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(routineJobPayload)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID))
	}
	defer s.release(payload.Lease)

	session, err := s.sessions.FindByID(ctx, payload.SessionID)
	if err != nil {
		return jobs.Permanent(fmt.Errorf("load session %s: %w", payload.SessionID, err))
	}
	if _, err := s.execute(ctx, session, payload.Request); err != nil {
		return jobs.Permanent(err)
	}
	return nil
}

// ListSessions returns the latest runs of an academic year.
func (s *RoutineGeneratorService) ListSessions(ctx context.Context, academicYear string, limit int) ([]models.RoutineSession, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	sessions, err := s.sessions.ListByAcademicYear(ctx, academicYear, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list routine sessions")
	}
	if sessions == nil {
		sessions = []models.RoutineSession{}
	}
	return sessions, nil
}

// GetSession returns one run including its report.
func (s *RoutineGeneratorService) GetSession(ctx context.Context, id string) (*models.RoutineSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "routine session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine session")
	}
	return session, nil
}

// Grid returns the weekly grid of an academic year, served from cache when possible.
func (s *RoutineGeneratorService) Grid(ctx context.Context, academicYear string, query dto.RoutineGridQuery) (*dto.RoutineGridResponse, bool, error) {
	if academicYear == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Validation(err, "invalid grid filter")
	}

	key := RoutineGridKey(academicYear, query.Semester, query.Section, query.TeacherID)
	if s.cache != nil {
		var cached dto.RoutineGridResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	entries, err := s.listEntries(ctx, academicYear, query)
	if err != nil {
		return nil, false, err
	}
	grid := buildGrid(academicYear, entries)

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, grid, s.cfg.GridCacheTTL)
	}
	return grid, false, nil
}

// Export renders the routine as csv or pdf. It returns the payload, its
// content type and a file name.
func (s *RoutineGeneratorService) Export(ctx context.Context, academicYear, format string, query dto.RoutineGridQuery) ([]byte, string, string, error) {
	if academicYear == "" {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, "", "", appErrors.Validation(err, "invalid export filter")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	entries, err := s.listEntries(ctx, academicYear, query)
	if err != nil {
		return nil, "", "", err
	}
	if len(entries) == 0 {
		return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "no routine generated for academic year")
	}

	name := fmt.Sprintf("routine-%s.%s", academicYear, format)
	switch format {
	case "pdf":
		payload, err := s.pdf.Render("Class Routine "+academicYear, buildTimetables(entries, query.TeacherID != ""))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render routine pdf")
		}
		return payload, "application/pdf", name, nil
	default:
		var buf bytes.Buffer
		if err := csvio.WriteEntries(&buf, entries); err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render routine csv")
		}
		return buf.Bytes(), "text/csv", name, nil
	}
}

// --- Run pipeline ---

func (s *RoutineGeneratorService) acquire(ctx context.Context, academicYear string) (*cache.Lease, error) {
	lease, err := s.locker.Acquire(ctx, academicYear, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, appErrors.Clone(appErrors.ErrRunInProgress, fmt.Sprintf("a routine run for %s is already in progress", academicYear))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock academic year")
	}
	return lease, nil
}

func (s *RoutineGeneratorService) release(lease *cache.Lease) {
	if lease == nil {
		return
	}
	if err := lease.Release(context.Background()); err != nil {
		s.logger.Warn("routine lock release failed", zap.String("key", lease.Key()), zap.Error(err))
	}
}

func (s *RoutineGeneratorService) openSession(ctx context.Context, academicYear, triggeredBy string) (*models.RoutineSession, error) {
	session := &models.RoutineSession{AcademicYear: academicYear, Status: models.RoutineSessionRunning}
	if triggeredBy != "" {
		session.TriggeredBy = &triggeredBy
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record routine session")
	}
	return session, nil
}

func (s *RoutineGeneratorService) execute(ctx context.Context, session *models.RoutineSession, req dto.GenerateRoutineRequest) (*dto.GenerateRoutineResponse, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.run(runCtx, req)
	elapsed := time.Since(start)
	s.closeSession(ctx, session, result, err)

	if err != nil {
		s.metrics.RecordRoutineRun(models.RoutineSessionFailed, elapsed, 0, 0, nil)
		s.logger.Warn("routine run failed",
			zap.String("session_id", session.ID),
			zap.String("academic_year", req.AcademicYear),
			zap.Duration("took", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	counts := result.ConflictCounts()
	s.metrics.RecordRoutineRun(models.RoutineSessionCompleted, elapsed, result.ScheduledCourses, len(result.Skipped), counts)
	if err := s.cache.InvalidateRoutine(ctx, req.AcademicYear); err != nil {
		s.logger.Warn("routine cache invalidation failed", zap.String("academic_year", req.AcademicYear), zap.Error(err))
	}
	s.logger.Info("routine run completed",
		zap.String("session_id", session.ID),
		zap.String("academic_year", req.AcademicYear),
		zap.Int64("seed", result.Seed),
		zap.Int("scheduled", result.ScheduledCourses),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Duration("took", elapsed),
	)

	byType := make(map[string]int, len(counts))
	for kind, n := range counts {
		byType[string(kind)] = n
	}
	return &dto.GenerateRoutineResponse{
		SessionID:        session.ID,
		AcademicYear:     result.AcademicYear,
		Success:          result.Success,
		Partial:          result.Partial(),
		Seed:             result.Seed,
		ScheduledCourses: result.ScheduledCourses,
		Skipped:          nonNilSkipped(result.Skipped),
		ConflictCounts:   byType,
		Conflicts:        result.Conflicts,
	}, nil
}

func (s *RoutineGeneratorService) run(ctx context.Context, req dto.GenerateRoutineRequest) (result *scheduler.Result, err error) {
	rows, err := s.assignments.ListActiveByAcademicYear(ctx, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course assignments")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active course assignments for academic year")
	}
	rows, err = s.resolve(ctx, rows)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.ListActiveByAcademicYear(ctx, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher preferences")
	}

	opts := scheduler.Options{
		AcademicYear: req.AcademicYear,
		Seed:         req.Seed,
		MaxAttempts:  s.cfg.MaxAttempts,
		DailyLimit:   s.cfg.DailyLimit,
		Logger:       s.logger,
	}
	if req.MaxAttempts > 0 {
		opts.MaxAttempts = req.MaxAttempts
	}
	if req.DailyLimit > 0 {
		opts.DailyLimit = req.DailyLimit
	}

	var exec sqlx.ExtContext
	var tx *sqlx.Tx
	if s.cfg.Transactional && s.tx != nil {
		tx, err = s.tx.BeginTxx(ctx, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()
		exec = tx
	}

	if _, err = s.entries.DeleteByAcademicYear(ctx, exec, req.AcademicYear); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous routine")
		return nil, err
	}
	opts.Sink = scheduler.SinkFunc(func(ctx context.Context, entry models.ScheduleEntry) error {
		return s.entries.Create(ctx, exec, &entry)
	})

	result, err = scheduler.Generate(ctx, rows, prefs, opts)
	if err != nil {
		err = mapSchedulerError(err)
		return nil, err
	}

	if tx != nil {
		if err = tx.Commit(); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit routine")
			return nil, err
		}
	}
	return result, nil
}

func (s *RoutineGeneratorService) resolve(ctx context.Context, rows []models.CourseAssignment) ([]models.CourseAssignment, error) {
	teacherIDs, courseIDs := scheduler.ReferencedIDs(rows)
	teachers, err := s.teachers.ListByIDs(ctx, teacherIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	courses, err := s.courses.ListByIDs(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	resolved, err := scheduler.Resolve(rows, teachers, courses)
	if err != nil {
		return nil, mapSchedulerError(err)
	}
	return resolved, nil
}

func (s *RoutineGeneratorService) closeSession(ctx context.Context, session *models.RoutineSession, result *scheduler.Result, runErr error) {
	now := time.Now().UTC()
	session.FinishedAt = &now
	if runErr != nil {
		session.Status = models.RoutineSessionFailed
		message := runErr.Error()
		session.Error = &message
		session.Report = types.JSONText("{}")
	} else {
		session.Status = models.RoutineSessionCompleted
		session.Seed = result.Seed
		session.ScheduledCourses = result.ScheduledCourses
		session.SkippedCount = len(result.Skipped)
		session.ConflictCount = len(result.Conflicts)
		report, err := json.Marshal(result.Report())
		if err != nil {
			s.logger.Warn("routine report encoding failed", zap.String("session_id", session.ID), zap.Error(err))
			report = []byte("{}")
		}
		session.Report = types.JSONText(report)
	}

	if err := s.sessions.Finish(context.WithoutCancel(ctx), session); err != nil {
		s.logger.Error("failed to close routine session", zap.String("session_id", session.ID), zap.Error(err))
	}
}

func (s *RoutineGeneratorService) listEntries(ctx context.Context, academicYear string, query dto.RoutineGridQuery) ([]models.ScheduleEntryDetail, error) {
	start := time.Now()
	entries, err := s.entries.ListByAcademicYear(ctx, models.ScheduleEntryFilter{
		AcademicYear: academicYear,
		Semester:     query.Semester,
		Section:      query.Section,
		TeacherID:    query.TeacherID,
	})
	s.metrics.ObserveDBQuery("schedule_entries_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine entries")
	}
	return entries, nil
}

func mapSchedulerError(err error) error {
	switch {
	case errors.Is(err, scheduler.ErrNoAssignments), errors.Is(err, scheduler.ErrUnresolvedReference):
		return appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, err.Error())
	case errors.Is(err, scheduler.ErrInvalidAssignment):
		return appErrors.Validation(err, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "routine run timed out")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "routine run failed")
	}
}

func nonNilSkipped(skipped []models.SkippedPlacement) []models.SkippedPlacement {
	if skipped == nil {
		return []models.SkippedPlacement{}
	}
	return skipped
}

// --- Presentation ---

func buildGrid(academicYear string, entries []models.ScheduleEntryDetail) *dto.RoutineGridResponse {
	grid := &dto.RoutineGridResponse{
		AcademicYear: academicYear,
		Slots:        models.TimeSlots,
		Days:         make([]dto.RoutineGridDay, 0, models.DaysPerWeek),
		TotalEntries: len(entries),
	}
	for _, day := range models.WorkingDays {
		row := dto.RoutineGridDay{Day: day, Cells: make([]dto.RoutineGridCell, 0, models.SlotsPerDay)}
		for _, slot := range models.TimeSlots {
			row.Cells = append(row.Cells, dto.RoutineGridCell{Slot: slot.ID, Entries: []models.ScheduleEntryDetail{}})
		}
		grid.Days = append(grid.Days, row)
	}
	for _, entry := range entries {
		if !entry.Day.Valid() || !models.ValidSlot(entry.Slot) {
			continue
		}
		cell := &grid.Days[entry.Day.Index()].Cells[entry.Slot-1]
		cell.Entries = append(cell.Entries, entry)
	}
	return grid
}

// buildTimetables splits entries into one page per section, or per teacher
// when the export is a teacher's personal routine.
func buildTimetables(entries []models.ScheduleEntryDetail, byTeacher bool) []export.Timetable {
	columns := make([]export.Column, 0, models.SlotsPerDay+2)
	for _, slot := range models.TimeSlots {
		columns = append(columns, export.Column{Label: slot.Period, SubLabel: slot.Label()})
		if slot.BreakAfter {
			columns = append(columns, export.Column{Break: true})
		}
	}

	type page struct {
		title string
		cells [models.DaysPerWeek][models.SlotsPerDay][]string
	}
	pages := make(map[string]*page)
	for _, entry := range entries {
		if !entry.Day.Valid() || !models.ValidSlot(entry.Slot) {
			continue
		}
		key := fmt.Sprintf("%d-%s", entry.Semester, entry.Section)
		title := fmt.Sprintf("Semester %d, Section %s", entry.Semester, entry.Section)
		label := fmt.Sprintf("%s %s", entry.CourseCode, entry.TeacherName)
		if byTeacher {
			key = entry.TeacherID
			title = entry.TeacherName
			label = fmt.Sprintf("%s %d%s", entry.CourseCode, entry.Semester, entry.Section)
		}
		p, ok := pages[key]
		if !ok {
			p = &page{title: title}
			pages[key] = p
		}
		d, sl := entry.Day.Index(), entry.Slot-1
		p.cells[d][sl] = append(p.cells[d][sl], label)
	}

	keys := make([]string, 0, len(pages))
	for key := range pages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tables := make([]export.Timetable, 0, len(keys))
	for _, key := range keys {
		p := pages[key]
		table := export.Timetable{Title: p.title, Columns: columns}
		for _, day := range models.WorkingDays {
			row := export.Row{Label: day.String(), Cells: make([]string, models.SlotsPerDay)}
			for sl := 0; sl < models.SlotsPerDay; sl++ {
				row.Cells[sl] = strings.Join(p.cells[day.Index()][sl], " / ")
			}
			table.Rows = append(table.Rows, row)
		}
		tables = append(tables, table)
	}
	return tables
}
