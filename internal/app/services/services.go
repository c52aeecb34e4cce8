package services

import (
	"context"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/app/repositories"
)

// Services defined in this package:
// - TeacherService: teacher CRUD and the teacher → workshops view
// - WorkshopService: workshop CRUD, teacher reference resolution and enrollment
// - UserService: participant CRUD and the participant → workshops view
// - PictureService: workshop and teacher pictures through the upload pipeline
// - AuthService: access token issuing, verification and admin accounts

// TeacherRepository is the persistence contract of TeacherService
type TeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Teacher, error)
	GetAll(ctx context.Context) ([]*models.Teacher, error)
	Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error)
	SetHasPicture(ctx context.Context, id int64, hasPicture bool) error
	Delete(ctx context.Context, id int64) error
}

// WorkshopRepository is the persistence contract for workshops, teacher references and album entries
type WorkshopRepository interface {
	Create(ctx context.Context, workshop *models.Workshop) error
	GetByID(ctx context.Context, id int64) (*models.Workshop, error)
	GetAll(ctx context.Context) ([]*models.Workshop, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Workshop, error)
	GetByTeacher(ctx context.Context, teacherID int64) ([]*models.Workshop, error)
	Update(ctx context.Context, id int64, update models.WorkshopUpdate) (*models.Workshop, error)
	SetHasPicture(ctx context.Context, id int64, hasPicture bool) error
	AddAlbumPictures(ctx context.Context, workshopID int64, pictures []models.AlbumPicture) error
	DeleteAlbumPicture(ctx context.Context, workshopID int64, pictureID string) error
	Delete(ctx context.Context, id int64) error
}

// EnrollmentRepository is the persistence contract for workshop enrollments
type EnrollmentRepository interface {
	Enroll(ctx context.Context, workshopID, userID int64, check repositories.EnrollmentCheck) (bool, error)
	Unenroll(ctx context.Context, workshopID, userID int64) error
	ListParticipants(ctx context.Context, workshopIDs []int64) (map[int64][]*models.User, error)
	ListWorkshopIDs(ctx context.Context, userID int64) ([]int64, error)
}

// UserRepository is the persistence contract of UserService
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// AdminRepository is the persistence contract for admin accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Count(ctx context.Context) (int, error)
}

// TokenRepository is the persistence contract for the active access token list
type TokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	Get(ctx context.Context, token string) (*models.AccessToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForSubject(ctx context.Context, kind models.SubjectKind, subjectID int64) (int64, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

var (
	_ TeacherRepository    = (*repositories.TeacherRepository)(nil)
	_ WorkshopRepository   = (*repositories.WorkshopRepository)(nil)
	_ EnrollmentRepository = (*repositories.EnrollmentRepository)(nil)
	_ UserRepository       = (*repositories.UserRepository)(nil)
	_ AdminRepository      = (*repositories.AdminRepository)(nil)
	_ TokenRepository      = (*repositories.TokenRepository)(nil)
)
