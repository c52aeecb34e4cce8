package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/filestorage"
	"github.com/linuxfest/backend/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// MissingTeacherPolicy decides what happens when a workshop references an unknown teacher id
type MissingTeacherPolicy string

const (
	// RejectMissingTeacher fails the write with a not-found error and persists nothing
	RejectMissingTeacher MissingTeacherPolicy = "reject"
	// AllowMissingTeacher keeps the reference with an empty name snapshot
	AllowMissingTeacher MissingTeacherPolicy = "allow"
)

// WorkshopInput holds the fields of a new workshop
type WorkshopInput struct {
	Title       string
	Description string
	Capacity    int
	Price       int64
	IsRegOpen   bool
	Times       []models.TimeRange
	TeacherIDs  []int64
}

// WorkshopPatch holds the whitelisted fields of a workshop update; nil fields are left unchanged
type WorkshopPatch struct {
	Title       *string
	Description *string
	Capacity    *int
	Price       *int64
	IsRegOpen   *bool
	Times       *[]models.TimeRange
	TeacherIDs  *[]int64
}

// WorkshopDetails is a workshop with its derived participant view and current teacher records
type WorkshopDetails struct {
	Workshop          *models.Workshop
	Teachers          []*models.Teacher
	Participants      []*models.User
	ParticipantsCount int
}

// WorkshopService defines the interface for workshop operations
type WorkshopService interface {
	CreateWorkshop(ctx context.Context, input WorkshopInput) (*models.Workshop, error)
	ListWorkshops(ctx context.Context) ([]*models.Workshop, error)
	GetWorkshop(ctx context.Context, id int64) (*WorkshopDetails, error)
	ListManagedWorkshops(ctx context.Context) ([]*WorkshopDetails, error)
	GetManagedWorkshop(ctx context.Context, id int64) (*WorkshopDetails, error)
	UpdateWorkshop(ctx context.Context, id int64, patch WorkshopPatch) (*models.Workshop, error)
	DeleteWorkshop(ctx context.Context, id int64) error
	Enroll(ctx context.Context, workshopID, userID int64) (bool, error)
	Unenroll(ctx context.Context, workshopID, userID int64) error
	ListUserWorkshops(ctx context.Context, userID int64) ([]*models.Workshop, error)
}

type workshopServiceImpl struct {
	workshopRepo   WorkshopRepository
	teacherRepo    TeacherRepository
	enrollmentRepo EnrollmentRepository
	userRepo       UserRepository
	pictures       *filestorage.Pipeline
	policy         MissingTeacherPolicy
	log            zerolog.Logger
}

// NewWorkshopService creates a new WorkshopService
func NewWorkshopService(
	workshopRepo WorkshopRepository,
	teacherRepo TeacherRepository,
	enrollmentRepo EnrollmentRepository,
	userRepo UserRepository,
	pictures *filestorage.Pipeline,
	policy MissingTeacherPolicy,
	log zerolog.Logger,
) WorkshopService {
	if policy != AllowMissingTeacher {
		policy = RejectMissingTeacher
	}
	return &workshopServiceImpl{
		workshopRepo:   workshopRepo,
		teacherRepo:    teacherRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		pictures:       pictures,
		policy:         policy,
		log:            log,
	}
}

func validateWorkshopFields(title *string, capacity *int, price *int64, times *[]models.TimeRange) error {
	if title != nil && strings.TrimSpace(*title) == "" {
		return apperrors.NewValidationError("title is required")
	}
	if capacity != nil && *capacity < 0 {
		return apperrors.NewValidationError("capacity cannot be negative")
	}
	if price != nil && *price < 0 {
		return apperrors.NewValidationError("price cannot be negative")
	}
	if times != nil {
		for i, tr := range *times {
			if tr.Start.IsZero() || tr.End.IsZero() || tr.End.Before(tr.Start) {
				return apperrors.NewValidationError(fmt.Sprintf("times[%d] must have a start before its end", i))
			}
		}
	}
	return nil
}

// resolveTeachers snapshots the current name of every referenced teacher, in request order.
// Duplicate ids are collapsed.
func (s *workshopServiceImpl) resolveTeachers(ctx context.Context, ids []int64) ([]models.TeacherRef, error) {
	refs := make([]models.TeacherRef, 0, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	found, err := s.teacherRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error resolving teachers: %w", err)
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		teacher, ok := found[id]
		if !ok {
			if s.policy == RejectMissingTeacher {
				return nil, &apperrors.CustomError{
					Err:     apperrors.ErrTeacherNotFound,
					Message: fmt.Sprintf("teacher %d not found", id),
				}
			}
			s.log.Warn().Int64("teacherID", id).Msg("Workshop references unknown teacher, keeping empty name")
			refs = append(refs, models.TeacherRef{TeacherID: id})
			continue
		}
		refs = append(refs, models.TeacherRef{TeacherID: id, Name: teacher.FullName})
	}
	return refs, nil
}

func (s *workshopServiceImpl) CreateWorkshop(ctx context.Context, input WorkshopInput) (*models.Workshop, error) {
	if err := validateWorkshopFields(&input.Title, &input.Capacity, &input.Price, &input.Times); err != nil {
		return nil, err
	}

	refs, err := s.resolveTeachers(ctx, input.TeacherIDs)
	if err != nil {
		return nil, err
	}

	times := input.Times
	if times == nil {
		times = []models.TimeRange{}
	}
	workshop := &models.Workshop{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Capacity:    input.Capacity,
		Price:       input.Price,
		IsRegOpen:   input.IsRegOpen,
		Times:       times,
		Teachers:    refs,
	}
	if err := s.workshopRepo.Create(ctx, workshop); err != nil {
		return nil, err
	}

	s.log.Info().Int64("workshopID", workshop.ID).Str("title", workshop.Title).Int("teachers", len(refs)).Msg("Workshop created")
	return workshop, nil
}

func (s *workshopServiceImpl) ListWorkshops(ctx context.Context) ([]*models.Workshop, error) {
	workshops, err := s.workshopRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing workshops: %w", err)
	}
	return workshops, nil
}

func (s *workshopServiceImpl) currentTeachers(ctx context.Context, workshop *models.Workshop) ([]*models.Teacher, error) {
	ids := make([]int64, 0, len(workshop.Teachers))
	for _, ref := range workshop.Teachers {
		ids = append(ids, ref.TeacherID)
	}
	found, err := s.teacherRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading workshop teachers: %w", err)
	}

	teachers := make([]*models.Teacher, 0, len(ids))
	for _, id := range ids {
		if t, ok := found[id]; ok {
			teachers = append(teachers, t)
		}
	}
	return teachers, nil
}

func (s *workshopServiceImpl) GetWorkshop(ctx context.Context, id int64) (*WorkshopDetails, error) {
	workshop, err := s.workshopRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	teachers, err := s.currentTeachers(ctx, workshop)
	if err != nil {
		return nil, err
	}
	return &WorkshopDetails{Workshop: workshop, Teachers: teachers}, nil
}

func (s *workshopServiceImpl) ListManagedWorkshops(ctx context.Context) ([]*WorkshopDetails, error) {
	workshops, err := s.workshopRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing workshops: %w", err)
	}

	ids := make([]int64, 0, len(workshops))
	for _, w := range workshops {
		ids = append(ids, w.ID)
	}
	participants, err := s.enrollmentRepo.ListParticipants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}

	result := make([]*WorkshopDetails, 0, len(workshops))
	for _, w := range workshops {
		users := participants[w.ID]
		if users == nil {
			users = []*models.User{}
		}
		result = append(result, &WorkshopDetails{
			Workshop:          w,
			Participants:      users,
			ParticipantsCount: len(users),
		})
	}
	return result, nil
}

func (s *workshopServiceImpl) GetManagedWorkshop(ctx context.Context, id int64) (*WorkshopDetails, error) {
	details, err := s.GetWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}

	participants, err := s.enrollmentRepo.ListParticipants(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	users := participants[id]
	if users == nil {
		users = []*models.User{}
	}
	details.Participants = users
	details.ParticipantsCount = len(users)
	return details, nil
}

func (s *workshopServiceImpl) UpdateWorkshop(ctx context.Context, id int64, patch WorkshopPatch) (*models.Workshop, error) {
	if err := validateWorkshopFields(patch.Title, patch.Capacity, patch.Price, patch.Times); err != nil {
		return nil, err
	}

	update := models.WorkshopUpdate{
		Capacity:  patch.Capacity,
		Price:     patch.Price,
		IsRegOpen: patch.IsRegOpen,
		Times:     patch.Times,
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		update.Title = &title
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		update.Description = &desc
	}

	// resolve before writing so a rejected teacher leaves the workshop untouched
	if _, err := s.workshopRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if patch.TeacherIDs != nil {
		refs, err := s.resolveTeachers(ctx, *patch.TeacherIDs)
		if err != nil {
			return nil, err
		}
		update.Teachers = &refs
	}

	workshop, err := s.workshopRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("workshopID", id).Msg("Workshop updated")
	return workshop, nil
}

// DeleteWorkshop removes enrollments and the workshop in one transaction, then the
// workshop's picture directory best-effort.
func (s *workshopServiceImpl) DeleteWorkshop(ctx context.Context, id int64) error {
	if err := s.workshopRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.pictures.RemoveAll(ctx, filestorage.KindWorkshop, id)
	s.log.Info().Int64("workshopID", id).Msg("Workshop deleted")
	return nil
}

// enrollmentAllowed is evaluated with the workshop row locked
func enrollmentAllowed(workshop *models.Workshop, participants int) error {
	if !workshop.IsRegOpen {
		return apperrors.ErrRegistrationClosed
	}
	if workshop.Capacity > 0 && participants >= workshop.Capacity {
		return apperrors.ErrWorkshopFull
	}
	return nil
}

// Enroll registers the user for the workshop. Returns false when the user was already enrolled.
func (s *workshopServiceImpl) Enroll(ctx context.Context, workshopID, userID int64) (bool, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return false, err
	}

	created, err := s.enrollmentRepo.Enroll(ctx, workshopID, userID, enrollmentAllowed)
	if err != nil {
		result := "error"
		if errors.Is(err, apperrors.ErrRegistrationClosed) || errors.Is(err, apperrors.ErrWorkshopFull) {
			result = "rejected"
		}
		metrics.EnrollmentsTotal.WithLabelValues("enroll", result).Inc()
		return false, err
	}

	if created {
		metrics.EnrollmentsTotal.WithLabelValues("enroll", "created").Inc()
		s.log.Info().Int64("workshopID", workshopID).Int64("userID", userID).Msg("User enrolled")
	} else {
		metrics.EnrollmentsTotal.WithLabelValues("enroll", "existing").Inc()
	}
	return created, nil
}

// Unenroll removes the user's enrollment in the workshop
func (s *workshopServiceImpl) Unenroll(ctx context.Context, workshopID, userID int64) error {
	if _, err := s.workshopRepo.GetByID(ctx, workshopID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.enrollmentRepo.Unenroll(ctx, workshopID, userID); err != nil {
		metrics.EnrollmentsTotal.WithLabelValues("unenroll", "error").Inc()
		return err
	}

	metrics.EnrollmentsTotal.WithLabelValues("unenroll", "removed").Inc()
	s.log.Info().Int64("workshopID", workshopID).Int64("userID", userID).Msg("User unenrolled")
	return nil
}

func (s *workshopServiceImpl) ListUserWorkshops(ctx context.Context, userID int64) ([]*models.Workshop, error) {
	ids, err := s.enrollmentRepo.ListWorkshopIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing user workshops: %w", err)
	}
	return s.workshopRepo.GetByIDs(ctx, ids)
}
