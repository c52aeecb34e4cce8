package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

// PictureService defines the interface for workshop and teacher picture operations
type PictureService interface {
	OpenWorkshopPicture(ctx context.Context, workshopID int64) (*filestorage.File, error)
	OpenAlbumPicture(ctx context.Context, workshopID int64, pictureID string) (*filestorage.File, error)
	OpenTeacherPicture(ctx context.Context, teacherID int64) (*filestorage.File, error)

	SetWorkshopPicture(ctx context.Context, workshopID int64, file *multipart.FileHeader) (*models.Workshop, error)
	DeleteWorkshopPicture(ctx context.Context, workshopID int64) (*models.Workshop, error)
	AddAlbumPictures(ctx context.Context, workshopID int64, files []*multipart.FileHeader) (*models.Workshop, error)
	DeleteAlbumPicture(ctx context.Context, workshopID int64, pictureID string) (*models.Workshop, error)

	SetTeacherPicture(ctx context.Context, teacherID int64, file *multipart.FileHeader) (*models.Teacher, error)
	DeleteTeacherPicture(ctx context.Context, teacherID int64) (*models.Teacher, error)
}

type pictureServiceImpl struct {
	workshopRepo WorkshopRepository
	teacherRepo  TeacherRepository
	pipeline     *filestorage.Pipeline
	log          zerolog.Logger
}

// NewPictureService creates a new PictureService
func NewPictureService(
	workshopRepo WorkshopRepository,
	teacherRepo TeacherRepository,
	pipeline *filestorage.Pipeline,
	log zerolog.Logger,
) PictureService {
	return &pictureServiceImpl{
		workshopRepo: workshopRepo,
		teacherRepo:  teacherRepo,
		pipeline:     pipeline,
		log:          log,
	}
}

func (s *pictureServiceImpl) open(ctx context.Context, key filestorage.Key) (*filestorage.File, error) {
	f, err := s.pipeline.Store().Open(ctx, key)
	if err != nil {
		if errors.Is(err, filestorage.ErrFileNotFound) {
			return nil, apperrors.ErrPictureNotFound
		}
		return nil, fmt.Errorf("error opening picture: %w", err)
	}
	return f, nil
}

func (s *pictureServiceImpl) OpenWorkshopPicture(ctx context.Context, workshopID int64) (*filestorage.File, error) {
	return s.open(ctx, filestorage.MainKey(filestorage.KindWorkshop, workshopID))
}

func (s *pictureServiceImpl) OpenAlbumPicture(ctx context.Context, workshopID int64, pictureID string) (*filestorage.File, error) {
	return s.open(ctx, filestorage.AlbumKey(filestorage.KindWorkshop, workshopID, pictureID))
}

func (s *pictureServiceImpl) OpenTeacherPicture(ctx context.Context, teacherID int64) (*filestorage.File, error) {
	return s.open(ctx, filestorage.MainKey(filestorage.KindTeacher, teacherID))
}

// SetWorkshopPicture validates the upload before touching storage, then replaces the main picture
func (s *pictureServiceImpl) SetWorkshopPicture(ctx context.Context, workshopID int64, file *multipart.FileHeader) (*models.Workshop, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("no picture uploaded")
	}
	if _, err := s.workshopRepo.GetByID(ctx, workshopID); err != nil {
		return nil, err
	}
	if err := s.pipeline.Check(file.Filename, file.Size); err != nil {
		return nil, err
	}

	if err := s.pipeline.Save(ctx, filestorage.MainKey(filestorage.KindWorkshop, workshopID), file); err != nil {
		return nil, err
	}
	if err := s.workshopRepo.SetHasPicture(ctx, workshopID, true); err != nil {
		return nil, err
	}
	return s.workshopRepo.GetByID(ctx, workshopID)
}

// DeleteWorkshopPicture removes the file best-effort, then clears the reference
func (s *pictureServiceImpl) DeleteWorkshopPicture(ctx context.Context, workshopID int64) (*models.Workshop, error) {
	workshop, err := s.workshopRepo.GetByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if !workshop.HasPicture {
		return nil, apperrors.ErrPictureNotFound
	}

	s.pipeline.Remove(ctx, filestorage.MainKey(filestorage.KindWorkshop, workshopID))
	if err := s.workshopRepo.SetHasPicture(ctx, workshopID, false); err != nil {
		return nil, err
	}
	workshop.HasPicture = false
	return workshop, nil
}

// AddAlbumPictures validates the whole batch before storing any picture. Files already
// written are removed again if a later step fails.
func (s *pictureServiceImpl) AddAlbumPictures(ctx context.Context, workshopID int64, files []*multipart.FileHeader) (*models.Workshop, error) {
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no pictures uploaded")
	}
	if _, err := s.workshopRepo.GetByID(ctx, workshopID); err != nil {
		return nil, err
	}
	if err := s.pipeline.CheckAll(files); err != nil {
		return nil, err
	}

	stored := make([]models.AlbumPicture, 0, len(files))
	rollback := func() {
		for _, pic := range stored {
			s.pipeline.Remove(ctx, filestorage.AlbumKey(filestorage.KindWorkshop, workshopID, pic.ID))
		}
	}

	now := time.Now().UTC()
	for i, fh := range files {
		pic := models.AlbumPicture{
			ID:        uuid.NewString(),
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		if err := s.pipeline.Save(ctx, filestorage.AlbumKey(filestorage.KindWorkshop, workshopID, pic.ID), fh); err != nil {
			rollback()
			return nil, err
		}
		stored = append(stored, pic)
	}

	if err := s.workshopRepo.AddAlbumPictures(ctx, workshopID, stored); err != nil {
		rollback()
		return nil, err
	}

	s.log.Info().Int64("workshopID", workshopID).Int("count", len(stored)).Msg("Album pictures added")
	return s.workshopRepo.GetByID(ctx, workshopID)
}

// DeleteAlbumPicture removes the file best-effort, then the album entry
func (s *pictureServiceImpl) DeleteAlbumPicture(ctx context.Context, workshopID int64, pictureID string) (*models.Workshop, error) {
	workshop, err := s.workshopRepo.GetByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(pictureID); err != nil {
		return nil, apperrors.ErrPictureNotFound
	}

	found := false
	for _, pic := range workshop.Album {
		if pic.ID == pictureID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.ErrPictureNotFound
	}

	s.pipeline.Remove(ctx, filestorage.AlbumKey(filestorage.KindWorkshop, workshopID, pictureID))
	if err := s.workshopRepo.DeleteAlbumPicture(ctx, workshopID, pictureID); err != nil {
		return nil, err
	}
	return s.workshopRepo.GetByID(ctx, workshopID)
}

func (s *pictureServiceImpl) SetTeacherPicture(ctx context.Context, teacherID int64, file *multipart.FileHeader) (*models.Teacher, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("no picture uploaded")
	}
	if _, err := s.teacherRepo.GetByID(ctx, teacherID); err != nil {
		return nil, err
	}
	if err := s.pipeline.Check(file.Filename, file.Size); err != nil {
		return nil, err
	}

	if err := s.pipeline.Save(ctx, filestorage.MainKey(filestorage.KindTeacher, teacherID), file); err != nil {
		return nil, err
	}
	if err := s.teacherRepo.SetHasPicture(ctx, teacherID, true); err != nil {
		return nil, err
	}
	return s.teacherRepo.GetByID(ctx, teacherID)
}

func (s *pictureServiceImpl) DeleteTeacherPicture(ctx context.Context, teacherID int64) (*models.Teacher, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if !teacher.HasPicture {
		return nil, apperrors.ErrPictureNotFound
	}

	s.pipeline.Remove(ctx, filestorage.MainKey(filestorage.KindTeacher, teacherID))
	if err := s.teacherRepo.SetHasPicture(ctx, teacherID, false); err != nil {
		return nil, err
	}
	teacher.HasPicture = false
	return teacher, nil
}
