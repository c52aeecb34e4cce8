package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/db"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/dberrors"
	"github.com/linuxfest/backend/internal/pkg/logger"
)

// EnrollmentCheck decides whether a new enrollment may be written, given the locked
// workshop and its current participant count.
type EnrollmentCheck func(workshop *models.Workshop, participants int) error

// EnrollmentRepository handles the workshop/participant link table
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Enroll links the user to the workshop. The workshop row is locked while check runs so
// concurrent enrollments see a consistent participant count. Returns false when the user
// was already enrolled; check is not consulted in that case.
func (r *EnrollmentRepository) Enroll(ctx context.Context, workshopID, userID int64, check EnrollmentCheck) (bool, error) {
	created := false
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Select(workshopColumns...).
			From("workshops").
			Where(squirrel.Eq{"id": workshopID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build lock workshop query: %w", err)
		}
		workshop, err := scanWorkshop(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrWorkshopNotFound
			}
			return fmt.Errorf("error locking workshop: %w", err)
		}

		enrolled, err := r.isEnrolled(ctx, tx, workshopID, userID)
		if err != nil {
			return err
		}
		if enrolled {
			return nil
		}

		count, err := r.count(ctx, tx, workshopID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(workshop, count); err != nil {
				return err
			}
		}

		sql, args, err = r.sb.Insert("enrollments").
			Columns("workshop_id", "user_id").
			Values(workshopID, userID).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build enroll query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrUserNotFound
			}
			logger.Error().Err(err).Int64("workshopID", workshopID).Int64("userID", userID).Msg("Error creating enrollment")
			return fmt.Errorf("error creating enrollment: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Unenroll removes exactly the (workshop, user) enrollment
func (r *EnrollmentRepository) Unenroll(ctx context.Context, workshopID, userID int64) error {
	sql, args, err := r.sb.Delete("enrollments").
		Where(squirrel.Eq{"workshop_id": workshopID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build unenroll query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("workshopID", workshopID).Int64("userID", userID).Msg("Error deleting enrollment")
		return fmt.Errorf("error deleting enrollment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotEnrolled
	}
	return nil
}

func (r *EnrollmentRepository) isEnrolled(ctx context.Context, q db.Querier, workshopID, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("enrollments").
		Where(squirrel.Eq{"workshop_id": workshopID, "user_id": userID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build enrollment exists query: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return exists, nil
}

func (r *EnrollmentRepository) count(ctx context.Context, q db.Querier, workshopID int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("enrollments").
		Where(squirrel.Eq{"workshop_id": workshopID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting participants: %w", err)
	}
	return count, nil
}

// ListParticipants returns the users enrolled in each of the given workshops, keyed by workshop id
func (r *EnrollmentRepository) ListParticipants(ctx context.Context, workshopIDs []int64) (map[int64][]*models.User, error) {
	result := make(map[int64][]*models.User, len(workshopIDs))
	if len(workshopIDs) == 0 {
		return result, nil
	}

	cols := append([]string{"e.workshop_id"}, prefixed("u", userColumns)...)
	sql, args, err := r.sb.Select(cols...).
		From("enrollments e").
		Join("users u ON u.id = e.user_id").
		Where(squirrel.Eq{"e.workshop_id": workshopIDs}).
		OrderBy("e.workshop_id", "e.created_at", "u.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build participants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var workshopID int64
		var u models.User
		if err := rows.Scan(&workshopID, &u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning participant: %w", err)
		}
		result[workshopID] = append(result[workshopID], &u)
	}
	return result, rows.Err()
}

// ListWorkshopIDs returns the ids of the workshops a user is enrolled in
func (r *EnrollmentRepository) ListWorkshopIDs(ctx context.Context, userID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("workshop_id").
		From("enrollments").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at", "workshop_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user workshops query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying user workshops: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning workshop id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
