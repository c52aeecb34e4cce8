package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// Principal is the authenticated caller of a request. Exactly one of Admin and User is set.
type Principal struct {
	Kind  models.SubjectKind
	Token string
	Admin *models.Admin
	User  *models.User
}

// AuthService issues and verifies access tokens and manages admin accounts.
// There is no HTTP login flow: tokens are issued by operators through the CLI.
type AuthService struct {
	adminRepo  AdminRepository
	userRepo   UserRepository
	tokenRepo  TokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	adminRepo AdminRepository,
	userRepo UserRepository,
	tokenRepo TokenRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:  adminRepo,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateAdmin creates an admin account with a hashed password
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string, role models.Role) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	admin := &models.Admin{Username: username, PasswordHash: hash, Role: role}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("adminID", admin.ID).Str("username", username).Str("role", string(role)).Msg("Admin created")
	return admin, nil
}

// EnsureAdmin creates the admin account only when no admin exists yet. Returns true if created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string, role models.Role) (bool, error) {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, username, password, role); err != nil {
		return false, err
	}
	return true, nil
}

// IssueAdminToken issues an access token for the admin with the given username
func (s *AuthService) IssueAdminToken(ctx context.Context, username string) (string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", time.Time{}, err
	}
	return s.issue(ctx, models.SubjectAdmin, admin.ID)
}

// IssueUserToken issues an access token for the participant with the given email
func (s *AuthService) IssueUserToken(ctx context.Context, email string) (string, time.Time, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", time.Time{}, err
	}
	return s.issue(ctx, models.SubjectUser, user.ID)
}

func (s *AuthService) issue(ctx context.Context, kind models.SubjectKind, subjectID int64) (string, time.Time, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(auth.SubjectKind(kind), subjectID)
	if err != nil {
		return "", time.Time{}, err
	}

	entry := &models.AccessToken{
		Token:       token,
		SubjectKind: kind,
		SubjectID:   subjectID,
		ExpiresAt:   expiresAt,
	}
	if err := s.tokenRepo.Create(ctx, entry); err != nil {
		return "", time.Time{}, err
	}

	s.logger.Info().Str("subjectKind", string(kind)).Int64("subjectID", subjectID).Time("expiresAt", expiresAt).Msg("Access token issued")
	return token, expiresAt, nil
}

// Authenticate verifies the bearer token and cross-checks it against the active token list
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	kind := models.SubjectKind(claims.Kind)

	entry, err := s.tokenRepo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if entry.SubjectKind != kind || entry.SubjectID != subjectID {
		s.logger.Warn().Int64("subjectID", subjectID).Msg("Access token subject mismatch")
		return nil, apperrors.ErrTokenInvalid
	}
	if entry.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if !entry.Usable(s.now()) {
		return nil, apperrors.ErrTokenExpired
	}

	principal := &Principal{Kind: kind, Token: token}
	switch kind {
	case models.SubjectAdmin:
		admin, err := s.adminRepo.GetByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, apperrors.ErrAdminNotFound) {
				return nil, apperrors.ErrUnauthenticated
			}
			return nil, err
		}
		principal.Admin = admin
	case models.SubjectUser:
		user, err := s.userRepo.GetByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil, apperrors.ErrUnauthenticated
			}
			return nil, err
		}
		principal.User = user
	default:
		return nil, apperrors.ErrTokenInvalid
	}
	return principal, nil
}

// RevokeToken removes a token from the active list
func (s *AuthService) RevokeToken(ctx context.Context, token string) error {
	return s.tokenRepo.Revoke(ctx, token)
}

// CleanupTokens deletes expired and long-revoked tokens
func (s *AuthService) CleanupTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.CleanupExpired(ctx)
}
