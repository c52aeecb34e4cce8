package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	TeacherRepository    *TeacherRepository
	WorkshopRepository   *WorkshopRepository
	EnrollmentRepository *EnrollmentRepository
	UserRepository       *UserRepository
	AdminRepository      *AdminRepository
	TokenRepository      *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		TeacherRepository:    NewTeacherRepository(db),
		WorkshopRepository:   NewWorkshopRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		UserRepository:       NewUserRepository(db),
		AdminRepository:      NewAdminRepository(db),
		TokenRepository:      NewTokenRepository(db),
	}
}
