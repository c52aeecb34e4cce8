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
	"github.com/linuxfest/backend/internal/db"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/logger"
)

var workshopColumns = []string{
	"id", "title", "description", "capacity", "price", "is_reg_open", "times", "has_picture", "created_at", "updated_at",
}

// WorkshopRepository handles database operations for workshops, their teacher references and album
type WorkshopRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewWorkshopRepository creates a new workshop repository
func NewWorkshopRepository(db *pgxpool.Pool) *WorkshopRepository {
	return &WorkshopRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanWorkshop(row pgx.Row) (*models.Workshop, error) {
	var w models.Workshop
	err := row.Scan(
		&w.ID,
		&w.Title,
		&w.Description,
		&w.Capacity,
		&w.Price,
		&w.IsRegOpen,
		&w.Times,
		&w.HasPicture,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if w.Times == nil {
		w.Times = []models.TimeRange{}
	}
	w.Teachers = []models.TeacherRef{}
	w.Album = []models.AlbumPicture{}
	return &w, nil
}

func timesOrEmpty(times []models.TimeRange) []models.TimeRange {
	if times == nil {
		return []models.TimeRange{}
	}
	return times
}

// Create inserts the workshop together with its teacher references
func (r *WorkshopRepository) Create(ctx context.Context, workshop *models.Workshop) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("workshops").
			Columns("title", "description", "capacity", "price", "is_reg_open", "times").
			Values(workshop.Title, workshop.Description, workshop.Capacity, workshop.Price, workshop.IsRegOpen, timesOrEmpty(workshop.Times)).
			Suffix("RETURNING id, has_picture, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create workshop query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&workshop.ID, &workshop.HasPicture, &workshop.CreatedAt, &workshop.UpdatedAt); err != nil {
			logger.Error().Err(err).Str("title", workshop.Title).Msg("Error creating workshop")
			return fmt.Errorf("error creating workshop: %w", err)
		}

		if err := r.replaceTeacherRefs(ctx, tx, workshop.ID, workshop.Teachers); err != nil {
			return err
		}
		if workshop.Teachers == nil {
			workshop.Teachers = []models.TeacherRef{}
		}
		workshop.Times = timesOrEmpty(workshop.Times)
		workshop.Album = []models.AlbumPicture{}
		return nil
	})
}

func (r *WorkshopRepository) replaceTeacherRefs(ctx context.Context, q db.Querier, workshopID int64, refs []models.TeacherRef) error {
	sql, args, err := r.sb.Delete("workshop_teachers").
		Where(squirrel.Eq{"workshop_id": workshopID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear teacher refs query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error clearing teacher refs: %w", err)
	}

	if len(refs) == 0 {
		return nil
	}

	insert := r.sb.Insert("workshop_teachers").
		Columns("workshop_id", "teacher_id", "teacher_name", "position")
	for i, ref := range refs {
		insert = insert.Values(workshopID, ref.TeacherID, ref.Name, i)
	}
	sql, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build teacher refs query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("workshopID", workshopID).Msg("Error storing teacher refs")
		return fmt.Errorf("error storing teacher refs: %w", err)
	}
	return nil
}

// GetByID retrieves a workshop with its teacher references and album
func (r *WorkshopRepository) GetByID(ctx context.Context, id int64) (*models.Workshop, error) {
	sql, args, err := r.sb.Select(workshopColumns...).
		From("workshops").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get workshop query: %w", err)
	}

	workshop, err := scanWorkshop(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrWorkshopNotFound
		}
		return nil, fmt.Errorf("error retrieving workshop: %w", err)
	}

	if err := r.loadRelations(ctx, []*models.Workshop{workshop}); err != nil {
		return nil, err
	}
	return workshop, nil
}

// GetAll retrieves all workshops ordered by id
func (r *WorkshopRepository) GetAll(ctx context.Context) ([]*models.Workshop, error) {
	sql, args, err := r.sb.Select(workshopColumns...).
		From("workshops").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list workshops query: %w", err)
	}
	return r.queryWithRelations(ctx, sql, args...)
}

// GetByIDs retrieves the workshops with the given ids ordered by id
func (r *WorkshopRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Workshop, error) {
	if len(ids) == 0 {
		return []*models.Workshop{}, nil
	}
	sql, args, err := r.sb.Select(workshopColumns...).
		From("workshops").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get workshops query: %w", err)
	}
	return r.queryWithRelations(ctx, sql, args...)
}

// GetByTeacher retrieves the workshops referencing a teacher
func (r *WorkshopRepository) GetByTeacher(ctx context.Context, teacherID int64) ([]*models.Workshop, error) {
	sql, args, err := r.sb.Select(workshopColumns...).
		From("workshops").
		Where("id IN (SELECT workshop_id FROM workshop_teachers WHERE teacher_id = ?)", teacherID).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher workshops query: %w", err)
	}
	return r.queryWithRelations(ctx, sql, args...)
}

func (r *WorkshopRepository) queryWithRelations(ctx context.Context, sql string, args ...interface{}) ([]*models.Workshop, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying workshops: %w", err)
	}
	defer rows.Close()

	workshops := make([]*models.Workshop, 0)
	for rows.Next() {
		workshop, err := scanWorkshop(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning workshop: %w", err)
		}
		workshops = append(workshops, workshop)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadRelations(ctx, workshops); err != nil {
		return nil, err
	}
	return workshops, nil
}

// loadRelations fills teacher references and album entries for the given workshops
func (r *WorkshopRepository) loadRelations(ctx context.Context, workshops []*models.Workshop) error {
	if len(workshops) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Workshop, len(workshops))
	ids := make([]int64, 0, len(workshops))
	for _, w := range workshops {
		byID[w.ID] = w
		ids = append(ids, w.ID)
	}

	sql, args, err := r.sb.Select("workshop_id", "teacher_id", "teacher_name").
		From("workshop_teachers").
		Where(squirrel.Eq{"workshop_id": ids}).
		OrderBy("workshop_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build teacher refs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error querying teacher refs: %w", err)
	}
	for rows.Next() {
		var workshopID int64
		var ref models.TeacherRef
		if err := rows.Scan(&workshopID, &ref.TeacherID, &ref.Name); err != nil {
			rows.Close()
			return fmt.Errorf("error scanning teacher ref: %w", err)
		}
		byID[workshopID].Teachers = append(byID[workshopID].Teachers, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	sql, args, err = r.sb.Select("workshop_id", "id", "created_at").
		From("workshop_album").
		Where(squirrel.Eq{"workshop_id": ids}).
		OrderBy("workshop_id", "created_at", "id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build album query: %w", err)
	}

	rows, err = r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error querying album: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var workshopID int64
		var pic models.AlbumPicture
		if err := rows.Scan(&workshopID, &pic.ID, &pic.CreatedAt); err != nil {
			return fmt.Errorf("error scanning album picture: %w", err)
		}
		byID[workshopID].Album = append(byID[workshopID].Album, pic)
	}
	return rows.Err()
}

// Update applies the non-nil fields of update and returns the stored workshop
func (r *WorkshopRepository) Update(ctx context.Context, id int64, update models.WorkshopUpdate) (*models.Workshop, error) {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		builder := r.sb.Update("workshops").
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": id})
		if update.Title != nil {
			builder = builder.Set("title", *update.Title)
		}
		if update.Description != nil {
			builder = builder.Set("description", *update.Description)
		}
		if update.Capacity != nil {
			builder = builder.Set("capacity", *update.Capacity)
		}
		if update.Price != nil {
			builder = builder.Set("price", *update.Price)
		}
		if update.IsRegOpen != nil {
			builder = builder.Set("is_reg_open", *update.IsRegOpen)
		}
		if update.Times != nil {
			builder = builder.Set("times", timesOrEmpty(*update.Times))
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update workshop query: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("workshopID", id).Msg("Error updating workshop")
			return fmt.Errorf("error updating workshop: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrWorkshopNotFound
		}

		if update.Teachers != nil {
			return r.replaceTeacherRefs(ctx, tx, id, *update.Teachers)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// SetHasPicture records whether the workshop has a stored main picture
func (r *WorkshopRepository) SetHasPicture(ctx context.Context, id int64, hasPicture bool) error {
	sql, args, err := r.sb.Update("workshops").
		Set("has_picture", hasPicture).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build workshop picture query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating workshop picture: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrWorkshopNotFound
	}
	return nil
}

// AddAlbumPictures records new album entries
func (r *WorkshopRepository) AddAlbumPictures(ctx context.Context, workshopID int64, pictures []models.AlbumPicture) error {
	if len(pictures) == 0 {
		return nil
	}

	insert := r.sb.Insert("workshop_album").Columns("id", "workshop_id", "created_at")
	for _, pic := range pictures {
		insert = insert.Values(pic.ID, workshopID, pic.CreatedAt)
	}
	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build album insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("workshopID", workshopID).Msg("Error storing album pictures")
		return fmt.Errorf("error storing album pictures: %w", err)
	}
	return nil
}

// DeleteAlbumPicture removes one album entry
func (r *WorkshopRepository) DeleteAlbumPicture(ctx context.Context, workshopID int64, pictureID string) error {
	sql, args, err := r.sb.Delete("workshop_album").
		Where(squirrel.Eq{"workshop_id": workshopID, "id": pictureID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build album delete query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting album picture: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPictureNotFound
	}
	return nil
}

// Delete removes the workshop's enrollments and then the workshop in one transaction.
// Teacher references and album entries cascade.
func (r *WorkshopRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Delete("enrollments").
			Where(squirrel.Eq{"workshop_id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete enrollments query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error deleting enrollments: %w", err)
		}

		sql, args, err = r.sb.Delete("workshops").
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete workshop query: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("workshopID", id).Msg("Error deleting workshop")
			return fmt.Errorf("error deleting workshop: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrWorkshopNotFound
		}
		return nil
	})
}
