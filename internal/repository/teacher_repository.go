package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/class-routine-api/internal/models"
)

const teacherColumns = `id, full_name, email, academic_rank, active, created_at, updated_at`

// TeacherRepository reads teacher reference data.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListByIDs returns the teachers whose ids are given, in no particular order.
func (r *TeacherRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Teacher, error) {
	if len(ids) == 0 {
		return []models.Teacher{}, nil
	}
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = ANY($1)`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list teachers by ids: %w", err)
	}
	return teachers, nil
}
