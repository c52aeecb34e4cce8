package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/dberrors"
)

// AdminRepository handles database operations for admin accounts
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts an admin account
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO admins (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		admin.Username, admin.PasswordHash, admin.Role,
	).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "admins_username_key") {
			return apperrors.NewConflictError("admin username already exists")
		}
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	return r.getOne(ctx, `SELECT id, username, password_hash, role, created_at FROM admins WHERE id = $1`, id)
}

// GetByUsername retrieves an admin by username
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.getOne(ctx, `SELECT id, username, password_hash, role, created_at FROM admins WHERE username = $1`, username)
}

func (r *AdminRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Admin, error) {
	var a models.Admin
	err := r.db.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, fmt.Errorf("error retrieving admin: %w", err)
	}
	return &a, nil
}

// Count returns the number of admin accounts
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting admins: %w", err)
	}
	return count, nil
}
