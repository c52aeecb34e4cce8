package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/filestorage"
	"github.com/linuxfest/backend/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// TeacherDetails is a teacher together with the workshops referencing it
type TeacherDetails struct {
	Teacher   *models.Teacher
	Workshops []*models.Workshop
}

// TeacherService defines the interface for teacher operations
type TeacherService interface {
	CreateTeacher(ctx context.Context, fullName, description string) (*models.Teacher, error)
	GetTeacher(ctx context.Context, id int64) (*TeacherDetails, error)
	ListTeachers(ctx context.Context) ([]*TeacherDetails, error)
	UpdateTeacher(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error)
	DeleteTeacher(ctx context.Context, id int64) error
}

type teacherServiceImpl struct {
	teacherRepo  TeacherRepository
	workshopRepo WorkshopRepository
	pictures     *filestorage.Pipeline
	log          zerolog.Logger
}

// NewTeacherService creates a new TeacherService
func NewTeacherService(
	teacherRepo TeacherRepository,
	workshopRepo WorkshopRepository,
	pictures *filestorage.Pipeline,
	log zerolog.Logger,
) TeacherService {
	return &teacherServiceImpl{
		teacherRepo:  teacherRepo,
		workshopRepo: workshopRepo,
		pictures:     pictures,
		log:          log,
	}
}

// normalizeTeacherName trims the name and applies the script-alphabetic rule
func normalizeTeacherName(fullName string) (string, error) {
	name := validation.NormalizeName(fullName)
	if utf8.RuneCountInString(name) < validation.NameMinLength || utf8.RuneCountInString(name) > validation.NameMaxLength {
		return "", fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, apperrors.ErrInvalidTeacherName)
	}
	if !validation.IsScriptAlphaName(name) {
		return "", fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, apperrors.ErrInvalidTeacherName)
	}
	return name, nil
}

func (s *teacherServiceImpl) CreateTeacher(ctx context.Context, fullName, description string) (*models.Teacher, error) {
	name, err := normalizeTeacherName(fullName)
	if err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		FullName:    name,
		Description: strings.TrimSpace(description),
	}
	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		return nil, err
	}

	s.log.Info().Int64("teacherID", teacher.ID).Str("fullName", teacher.FullName).Msg("Teacher created")
	return teacher, nil
}

func (s *teacherServiceImpl) GetTeacher(ctx context.Context, id int64) (*TeacherDetails, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workshops, err := s.workshopRepo.GetByTeacher(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading teacher workshops: %w", err)
	}

	return &TeacherDetails{Teacher: teacher, Workshops: workshops}, nil
}

func (s *teacherServiceImpl) ListTeachers(ctx context.Context) ([]*TeacherDetails, error) {
	teachers, err := s.teacherRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing teachers: %w", err)
	}

	workshops, err := s.workshopRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing workshops: %w", err)
	}

	byTeacher := make(map[int64][]*models.Workshop)
	for _, w := range workshops {
		seen := make(map[int64]bool, len(w.Teachers))
		for _, ref := range w.Teachers {
			if seen[ref.TeacherID] {
				continue
			}
			seen[ref.TeacherID] = true
			byTeacher[ref.TeacherID] = append(byTeacher[ref.TeacherID], w)
		}
	}

	result := make([]*TeacherDetails, 0, len(teachers))
	for _, t := range teachers {
		ws := byTeacher[t.ID]
		if ws == nil {
			ws = []*models.Workshop{}
		}
		result = append(result, &TeacherDetails{Teacher: t, Workshops: ws})
	}
	return result, nil
}

func (s *teacherServiceImpl) UpdateTeacher(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error) {
	if update.FullName != nil {
		name, err := normalizeTeacherName(*update.FullName)
		if err != nil {
			return nil, err
		}
		update.FullName = &name
	}
	if update.Description != nil {
		desc := strings.TrimSpace(*update.Description)
		update.Description = &desc
	}

	teacher, err := s.teacherRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("teacherID", id).Msg("Teacher updated")
	return teacher, nil
}

// DeleteTeacher removes the teacher record, then its picture best-effort.
// Workshop references keep their name snapshot.
func (s *teacherServiceImpl) DeleteTeacher(ctx context.Context, id int64) error {
	if err := s.teacherRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.pictures.RemoveAll(ctx, filestorage.KindTeacher, id)
	s.log.Info().Int64("teacherID", id).Msg("Teacher deleted")
	return nil
}
