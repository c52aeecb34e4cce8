package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/dberrors"
	"github.com/linuxfest/backend/internal/pkg/logger"
)

const teacherNameConstraint = "teachers_full_name_key"

var teacherColumns = []string{"id", "full_name", "description", "has_picture", "created_at", "updated_at"}

// TeacherRepository handles database operations for teachers
type TeacherRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(db *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanTeacher(row pgx.Row) (*models.Teacher, error) {
	var t models.Teacher
	if err := row.Scan(&t.ID, &t.FullName, &t.Description, &t.HasPicture, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a teacher and fills its id and timestamps
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	sql, args, err := r.sb.Insert("teachers").
		Columns("full_name", "description").
		Values(teacher.FullName, teacher.Description).
		Suffix("RETURNING id, has_picture, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create teacher query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&teacher.ID, &teacher.HasPicture, &teacher.CreatedAt, &teacher.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, teacherNameConstraint) {
			return apperrors.ErrTeacherAlreadyExists
		}
		logger.Error().Err(err).Str("fullName", teacher.FullName).Msg("Error creating teacher")
		return fmt.Errorf("error creating teacher: %w", err)
	}

	return nil
}

// GetByID retrieves a teacher by ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	sql, args, err := r.sb.Select(teacherColumns...).
		From("teachers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teacher query: %w", err)
	}

	teacher, err := scanTeacher(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeacherNotFound
		}
		return nil, fmt.Errorf("error retrieving teacher: %w", err)
	}

	return teacher, nil
}

// GetByIDs retrieves the teachers with the given ids keyed by id. Unknown ids are absent from the map.
func (r *TeacherRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Teacher, error) {
	result := make(map[int64]*models.Teacher, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select(teacherColumns...).
		From("teachers").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teachers query: %w", err)
	}

	teachers, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	for _, t := range teachers {
		result[t.ID] = t
	}
	return result, nil
}

// GetAll retrieves all teachers ordered by id
func (r *TeacherRepository) GetAll(ctx context.Context) ([]*models.Teacher, error) {
	sql, args, err := r.sb.Select(teacherColumns...).
		From("teachers").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list teachers query: %w", err)
	}

	return r.query(ctx, sql, args...)
}

func (r *TeacherRepository) query(ctx context.Context, sql string, args ...interface{}) ([]*models.Teacher, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*models.Teacher, 0)
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning teacher: %w", err)
		}
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teachers, nil
}

// Update applies the non-nil fields of update and returns the stored teacher
func (r *TeacherRepository) Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error) {
	if update.Empty() {
		return r.GetByID(ctx, id)
	}

	builder := r.sb.Update("teachers").
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id})
	if update.FullName != nil {
		builder = builder.Set("full_name", *update.FullName)
	}
	if update.Description != nil {
		builder = builder.Set("description", *update.Description)
	}

	sql, args, err := builder.Suffix("RETURNING id, full_name, description, has_picture, created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update teacher query: %w", err)
	}

	teacher, err := scanTeacher(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrTeacherNotFound
		case dberrors.IsDuplicateConstraintError(err, teacherNameConstraint):
			return nil, apperrors.ErrTeacherAlreadyExists
		}
		logger.Error().Err(err).Int64("teacherID", id).Msg("Error updating teacher")
		return nil, fmt.Errorf("error updating teacher: %w", err)
	}

	return teacher, nil
}

// SetHasPicture records whether the teacher has a stored picture
func (r *TeacherRepository) SetHasPicture(ctx context.Context, id int64, hasPicture bool) error {
	sql, args, err := r.sb.Update("teachers").
		Set("has_picture", hasPicture).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build teacher picture query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating teacher picture: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}
	return nil
}

// Delete removes a teacher. Workshop references keep their name snapshot.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("teachers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete teacher query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("teacherID", id).Msg("Error deleting teacher")
		return fmt.Errorf("error deleting teacher: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}
	return nil
}
