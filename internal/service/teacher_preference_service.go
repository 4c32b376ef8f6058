package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-routine-api/internal/dto"
	"github.com/noah-isme/class-routine-api/internal/models"
	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
)

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type teacherPreferenceRepo interface {
	ListByTeacher(ctx context.Context, teacherID, academicYear string) ([]models.TeacherPreference, error)
	ReplaceForTeacher(ctx context.Context, teacherID, academicYear string, prefs []models.TeacherPreference) error
}

// TeacherPreferenceService manages the per-slot preferences a teacher states for a year.
type TeacherPreferenceService struct {
	teachers  teacherReader
	repo      teacherPreferenceRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherPreferenceService builds the service.
func NewTeacherPreferenceService(teachers teacherReader, repo teacherPreferenceRepo, validate *validator.Validate, logger *zap.Logger) *TeacherPreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherPreferenceService{
		teachers:  teachers,
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// List returns the active preferences of a teacher. Slots without a row are LOW.
func (s *TeacherPreferenceService) List(ctx context.Context, teacherID, academicYear string) ([]models.TeacherPreference, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year is required")
	}
	if err := s.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	prefs, err := s.repo.ListByTeacher(ctx, teacherID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher preferences")
	}
	if prefs == nil {
		prefs = []models.TeacherPreference{}
	}
	return prefs, nil
}

// Replace swaps the teacher's active preferences for the year with the payload.
func (s *TeacherPreferenceService) Replace(ctx context.Context, teacherID string, req dto.ReplacePreferencesRequest) ([]models.TeacherPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid preference payload")
	}
	if err := s.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	prefs, err := buildPreferences(teacherID, req)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}

	if err := s.repo.ReplaceForTeacher(ctx, teacherID, req.AcademicYear, prefs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store teacher preferences")
	}
	s.logger.Info("teacher preferences replaced",
		zap.String("teacher_id", teacherID),
		zap.String("academic_year", req.AcademicYear),
		zap.Int("count", len(prefs)),
	)
	return prefs, nil
}

func (s *TeacherPreferenceService) ensureTeacher(ctx context.Context, teacherID string) error {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return nil
}

func buildPreferences(teacherID string, req dto.ReplacePreferencesRequest) ([]models.TeacherPreference, error) {
	type cell struct {
		day  models.WorkingDay
		slot int
	}
	seen := make(map[cell]bool, len(req.Preferences))
	prefs := make([]models.TeacherPreference, 0, len(req.Preferences))
	for _, item := range req.Preferences {
		day, err := models.ParseWorkingDay(item.Day)
		if err != nil {
			return nil, err
		}
		if !models.ValidSlot(item.Slot) {
			return nil, fmt.Errorf("slot %d out of range", item.Slot)
		}
		level, err := models.ParsePreferenceLevel(item.Level)
		if err != nil {
			return nil, err
		}
		key := cell{day: day, slot: item.Slot}
		if seen[key] {
			return nil, fmt.Errorf("duplicate preference for %s slot %d", day, item.Slot)
		}
		seen[key] = true
		prefs = append(prefs, models.TeacherPreference{
			TeacherID:    teacherID,
			Day:          day,
			Slot:         item.Slot,
			Level:        level,
			AcademicYear: req.AcademicYear,
			Active:       true,
		})
	}
	return prefs, nil
}
