package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/auth"
	"github.com/linuxfest/backend/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// UserInput holds the fields of a new participant
type UserInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
}

// UserDetails is a participant together with the workshops they are enrolled in
type UserDetails struct {
	User      *models.User
	Workshops []*models.Workshop
}

// UserService defines the interface for participant operations
type UserService interface {
	CreateUser(ctx context.Context, input UserInput) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*UserDetails, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userServiceImpl struct {
	userRepo        UserRepository
	tokenRepo       TokenRepository
	workshopService WorkshopService
	log             zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	workshopService WorkshopService,
	log zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		workshopService: workshopService,
		log:             log,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("email is not valid")
	}
	return email, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, input UserInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	firstName := validation.NormalizeName(input.FirstName)
	if firstName == "" {
		return nil, apperrors.NewValidationError("first name is required")
	}
	if input.PhoneNumber != "" && !validation.IsPhoneNumber(input.PhoneNumber) {
		return nil, apperrors.NewValidationError("phone number is not valid")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     validation.NormalizeName(input.LastName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int64("userID", user.ID).Msg("User created")
	return user, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*UserDetails, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workshops, err := s.workshopService.ListUserWorkshops(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserDetails{User: user, Workshops: workshops}, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	if update.Email != nil {
		email, err := normalizeEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		update.Email = &email
	}
	if update.FirstName != nil {
		name := validation.NormalizeName(*update.FirstName)
		if name == "" {
			return nil, apperrors.NewValidationError("first name is required")
		}
		update.FirstName = &name
	}
	if update.LastName != nil {
		name := validation.NormalizeName(*update.LastName)
		update.LastName = &name
	}
	if update.PhoneNumber != nil {
		phone := strings.TrimSpace(*update.PhoneNumber)
		if phone != "" && !validation.IsPhoneNumber(phone) {
			return nil, apperrors.NewValidationError("phone number is not valid")
		}
		update.PhoneNumber = &phone
	}

	user, err := s.userRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("userID", id).Msg("User updated")
	return user, nil
}

// DeleteUser removes the participant with their enrollments and revokes their tokens
func (s *userServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.tokenRepo.RevokeAllForSubject(ctx, models.SubjectUser, id); err != nil {
		s.log.Warn().Err(err).Int64("userID", id).Msg("Failed to revoke tokens of deleted user")
	}
	s.log.Info().Int64("userID", id).Msg("User deleted")
	return nil
}
