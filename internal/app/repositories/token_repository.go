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

// TokenRepository handles the active access token list
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a newly issued access token
func (r *TokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	sql, args, err := r.sb.Insert("access_tokens").
		Columns("token", "subject_kind", "subject_id", "expires_at", "revoked").
		Values(token.Token, token.SubjectKind, token.SubjectID, token.ExpiresAt, false).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create token SQL")
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "access_tokens_token_key") {
			logger.Warn().Msg("Attempted to store duplicate access token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Str("subjectKind", string(token.SubjectKind)).Int64("subjectID", token.SubjectID).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}

	return nil
}

// Get retrieves a token entry by its value
func (r *TokenRepository) Get(ctx context.Context, token string) (*models.AccessToken, error) {
	sql, args, err := r.sb.Select("id", "token", "subject_kind", "subject_id", "expires_at", "revoked", "created_at").
		From("access_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get token SQL")
		return nil, fmt.Errorf("failed to build get token query: %w", err)
	}

	var t models.AccessToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.Token, &t.SubjectKind, &t.SubjectID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning token row")
		return nil, fmt.Errorf("error retrieving token: %w", err)
	}

	return &t, nil
}

// Revoke marks a token revoked
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	sql, args, err := r.sb.Update("access_tokens").
		Set("revoked", true).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke token SQL")
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}

	return nil
}

// RevokeAllForSubject revokes every active token of a subject and returns how many were revoked
func (r *TokenRepository) RevokeAllForSubject(ctx context.Context, kind models.SubjectKind, subjectID int64) (int64, error) {
	sql, args, err := r.sb.Update("access_tokens").
		Set("revoked", true).
		Where(squirrel.Eq{"subject_kind": kind, "subject_id": subjectID, "revoked": false}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke subject tokens SQL")
		return 0, fmt.Errorf("failed to build revoke subject tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("subjectKind", string(kind)).Int64("subjectID", subjectID).Msg("Error executing revoke subject tokens query")
		return 0, fmt.Errorf("error revoking subject tokens: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// CleanupExpired removes expired tokens and revoked tokens older than 30 days
func (r *TokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	now := time.Now()
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)

	sql, args, err := r.sb.Delete("access_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.And{
				squirrel.Eq{"revoked": true},
				squirrel.Lt{"created_at": thirtyDaysAgo},
			},
		}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building cleanup tokens SQL")
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup tokens query")
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}

	deleted := cmdTag.RowsAffected()
	logger.Info().Int64("deletedCount", deleted).Msg("Cleaned up expired/old revoked tokens")
	return deleted, nil
}
