// Package memory provides in-process implementations of the repository contracts.
// They mirror the error behavior of the PostgreSQL repositories and back the
// service and HTTP tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/app/repositories"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
)

type enrollmentKey struct {
	workshopID int64
	userID     int64
}

type state struct {
	mu     sync.Mutex
	nextID map[string]int64
	clock  time.Time

	teachers    map[int64]*models.Teacher
	workshops   map[int64]*models.Workshop
	users       map[int64]*models.User
	admins      map[int64]*models.Admin
	tokens      map[string]*models.AccessToken
	enrollments map[enrollmentKey]time.Time
}

// now returns a strictly increasing timestamp so ordering by creation time is stable
func (s *state) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.clock) {
		t = s.clock.Add(time.Microsecond)
	}
	s.clock = t
	return t
}

func (s *state) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Store holds the shared state of all in-memory repositories
type Store struct {
	Teachers    *TeacherRepository
	Workshops   *WorkshopRepository
	Enrollments *EnrollmentRepository
	Users       *UserRepository
	Admins      *AdminRepository
	Tokens      *TokenRepository
}

// NewStore creates an empty store
func NewStore() *Store {
	st := &state{
		nextID:      make(map[string]int64),
		teachers:    make(map[int64]*models.Teacher),
		workshops:   make(map[int64]*models.Workshop),
		users:       make(map[int64]*models.User),
		admins:      make(map[int64]*models.Admin),
		tokens:      make(map[string]*models.AccessToken),
		enrollments: make(map[enrollmentKey]time.Time),
	}
	return &Store{
		Teachers:    &TeacherRepository{st},
		Workshops:   &WorkshopRepository{st},
		Enrollments: &EnrollmentRepository{st},
		Users:       &UserRepository{st},
		Admins:      &AdminRepository{st},
		Tokens:      &TokenRepository{st},
	}
}

func copyTeacher(t *models.Teacher) *models.Teacher {
	c := *t
	return &c
}

func copyWorkshop(w *models.Workshop) *models.Workshop {
	c := *w
	c.Times = append([]models.TimeRange{}, w.Times...)
	c.Teachers = append([]models.TeacherRef{}, w.Teachers...)
	c.Album = append([]models.AlbumPicture{}, w.Album...)
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TeacherRepository is the in-memory teacher store
type TeacherRepository struct{ st *state }

func (r *TeacherRepository) nameTaken(name string, except int64) bool {
	for id, t := range r.st.teachers {
		if id != except && t.FullName == name {
			return true
		}
	}
	return false
}

func (r *TeacherRepository) Create(_ context.Context, teacher *models.Teacher) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.nameTaken(teacher.FullName, 0) {
		return apperrors.ErrTeacherAlreadyExists
	}
	now := r.st.now()
	teacher.ID = r.st.id("teachers")
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	r.st.teachers[teacher.ID] = copyTeacher(teacher)
	return nil
}

func (r *TeacherRepository) GetByID(_ context.Context, id int64) (*models.Teacher, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	t, ok := r.st.teachers[id]
	if !ok {
		return nil, apperrors.ErrTeacherNotFound
	}
	return copyTeacher(t), nil
}

func (r *TeacherRepository) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.Teacher, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	result := make(map[int64]*models.Teacher, len(ids))
	for _, id := range ids {
		if t, ok := r.st.teachers[id]; ok {
			result[id] = copyTeacher(t)
		}
	}
	return result, nil
}

func (r *TeacherRepository) GetAll(_ context.Context) ([]*models.Teacher, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	teachers := make([]*models.Teacher, 0, len(r.st.teachers))
	for _, id := range sortedIDs(r.st.teachers) {
		teachers = append(teachers, copyTeacher(r.st.teachers[id]))
	}
	return teachers, nil
}

func (r *TeacherRepository) Update(_ context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	t, ok := r.st.teachers[id]
	if !ok {
		return nil, apperrors.ErrTeacherNotFound
	}
	if update.Empty() {
		return copyTeacher(t), nil
	}
	if update.FullName != nil && r.nameTaken(*update.FullName, id) {
		return nil, apperrors.ErrTeacherAlreadyExists
	}
	if update.FullName != nil {
		t.FullName = *update.FullName
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	t.UpdatedAt = r.st.now()
	return copyTeacher(t), nil
}

func (r *TeacherRepository) SetHasPicture(_ context.Context, id int64, hasPicture bool) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	t, ok := r.st.teachers[id]
	if !ok {
		return apperrors.ErrTeacherNotFound
	}
	t.HasPicture = hasPicture
	t.UpdatedAt = r.st.now()
	return nil
}

// Delete removes the teacher. Workshop references are kept with their name snapshot.
func (r *TeacherRepository) Delete(_ context.Context, id int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.teachers[id]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	delete(r.st.teachers, id)
	return nil
}

// WorkshopRepository is the in-memory workshop store
type WorkshopRepository struct{ st *state }

func (r *WorkshopRepository) Create(_ context.Context, workshop *models.Workshop) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	now := r.st.now()
	workshop.ID = r.st.id("workshops")
	workshop.CreatedAt = now
	workshop.UpdatedAt = now
	stored := copyWorkshop(workshop)
	stored.Album = []models.AlbumPicture{}
	r.st.workshops[workshop.ID] = stored

	*workshop = *copyWorkshop(stored)
	return nil
}

func (r *WorkshopRepository) GetByID(_ context.Context, id int64) (*models.Workshop, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w, ok := r.st.workshops[id]
	if !ok {
		return nil, apperrors.ErrWorkshopNotFound
	}
	return copyWorkshop(w), nil
}

func (r *WorkshopRepository) filter(keep func(*models.Workshop) bool) []*models.Workshop {
	result := make([]*models.Workshop, 0)
	for _, id := range sortedIDs(r.st.workshops) {
		w := r.st.workshops[id]
		if keep(w) {
			result = append(result, copyWorkshop(w))
		}
	}
	return result
}

func (r *WorkshopRepository) GetAll(_ context.Context) ([]*models.Workshop, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.filter(func(*models.Workshop) bool { return true }), nil
}

func (r *WorkshopRepository) GetByIDs(_ context.Context, ids []int64) ([]*models.Workshop, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.filter(func(w *models.Workshop) bool { return wanted[w.ID] }), nil
}

func (r *WorkshopRepository) GetByTeacher(_ context.Context, teacherID int64) ([]*models.Workshop, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.filter(func(w *models.Workshop) bool { return w.HasTeacher(teacherID) }), nil
}

func (r *WorkshopRepository) Update(_ context.Context, id int64, update models.WorkshopUpdate) (*models.Workshop, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w, ok := r.st.workshops[id]
	if !ok {
		return nil, apperrors.ErrWorkshopNotFound
	}
	if update.Title != nil {
		w.Title = *update.Title
	}
	if update.Description != nil {
		w.Description = *update.Description
	}
	if update.Capacity != nil {
		w.Capacity = *update.Capacity
	}
	if update.Price != nil {
		w.Price = *update.Price
	}
	if update.IsRegOpen != nil {
		w.IsRegOpen = *update.IsRegOpen
	}
	if update.Times != nil {
		w.Times = append([]models.TimeRange{}, (*update.Times)...)
	}
	if update.Teachers != nil {
		w.Teachers = append([]models.TeacherRef{}, (*update.Teachers)...)
	}
	w.UpdatedAt = r.st.now()
	return copyWorkshop(w), nil
}

func (r *WorkshopRepository) SetHasPicture(_ context.Context, id int64, hasPicture bool) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w, ok := r.st.workshops[id]
	if !ok {
		return apperrors.ErrWorkshopNotFound
	}
	w.HasPicture = hasPicture
	w.UpdatedAt = r.st.now()
	return nil
}

func (r *WorkshopRepository) AddAlbumPictures(_ context.Context, workshopID int64, pictures []models.AlbumPicture) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w, ok := r.st.workshops[workshopID]
	if !ok {
		return apperrors.ErrWorkshopNotFound
	}
	w.Album = append(w.Album, pictures...)
	return nil
}

func (r *WorkshopRepository) DeleteAlbumPicture(_ context.Context, workshopID int64, pictureID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w, ok := r.st.workshops[workshopID]
	if !ok {
		return apperrors.ErrPictureNotFound
	}
	for i, pic := range w.Album {
		if pic.ID == pictureID {
			w.Album = append(w.Album[:i:i], w.Album[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrPictureNotFound
}

// Delete removes the workshop together with its enrollments
func (r *WorkshopRepository) Delete(_ context.Context, id int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.workshops[id]; !ok {
		return apperrors.ErrWorkshopNotFound
	}
	for key := range r.st.enrollments {
		if key.workshopID == id {
			delete(r.st.enrollments, key)
		}
	}
	delete(r.st.workshops, id)
	return nil
}

// EnrollmentRepository is the in-memory enrollment store
type EnrollmentRepository struct{ st *state }

func (r *EnrollmentRepository) count(workshopID int64) int {
	n := 0
	for key := range r.st.enrollments {
		if key.workshopID == workshopID {
			n++
		}
	}
	return n
}

// Enroll runs check and the insert under the store lock, matching the row lock of the SQL store
func (r *EnrollmentRepository) Enroll(_ context.Context, workshopID, userID int64, check repositories.EnrollmentCheck) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w, ok := r.st.workshops[workshopID]
	if !ok {
		return false, apperrors.ErrWorkshopNotFound
	}
	key := enrollmentKey{workshopID: workshopID, userID: userID}
	if _, ok := r.st.enrollments[key]; ok {
		return false, nil
	}
	if check != nil {
		if err := check(copyWorkshop(w), r.count(workshopID)); err != nil {
			return false, err
		}
	}
	if _, ok := r.st.users[userID]; !ok {
		return false, apperrors.ErrUserNotFound
	}
	r.st.enrollments[key] = r.st.now()
	return true, nil
}

func (r *EnrollmentRepository) Unenroll(_ context.Context, workshopID, userID int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	key := enrollmentKey{workshopID: workshopID, userID: userID}
	if _, ok := r.st.enrollments[key]; !ok {
		return apperrors.ErrNotEnrolled
	}
	delete(r.st.enrollments, key)
	return nil
}

type enrollmentRow struct {
	key enrollmentKey
	at  time.Time
}

func (r *EnrollmentRepository) rows(keep func(enrollmentKey) bool) []enrollmentRow {
	rows := make([]enrollmentRow, 0)
	for key, at := range r.st.enrollments {
		if keep(key) {
			rows = append(rows, enrollmentRow{key: key, at: at})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].at.Before(rows[j].at) })
	return rows
}

func (r *EnrollmentRepository) ListParticipants(_ context.Context, workshopIDs []int64) (map[int64][]*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	wanted := make(map[int64]bool, len(workshopIDs))
	for _, id := range workshopIDs {
		wanted[id] = true
	}

	result := make(map[int64][]*models.User, len(workshopIDs))
	for _, row := range r.rows(func(k enrollmentKey) bool { return wanted[k.workshopID] }) {
		if u, ok := r.st.users[row.key.userID]; ok {
			result[row.key.workshopID] = append(result[row.key.workshopID], copyUser(u))
		}
	}
	return result, nil
}

func (r *EnrollmentRepository) ListWorkshopIDs(_ context.Context, userID int64) ([]int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	ids := make([]int64, 0)
	for _, row := range r.rows(func(k enrollmentKey) bool { return k.userID == userID }) {
		ids = append(ids, row.key.workshopID)
	}
	return ids, nil
}

// UserRepository is the in-memory participant store
type UserRepository struct{ st *state }

func (r *UserRepository) emailTaken(email string, except int64) bool {
	for id, u := range r.st.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.emailTaken(user.Email, 0) {
		return apperrors.ErrEmailAlreadyExists
	}
	now := r.st.now()
	user.ID = r.st.id("users")
	user.CreatedAt = now
	user.UpdatedAt = now
	r.st.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	u, ok := r.st.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) GetAll(_ context.Context) ([]*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	users := make([]*models.User, 0, len(r.st.users))
	for _, id := range sortedIDs(r.st.users) {
		users = append(users, copyUser(r.st.users[id]))
	}
	return users, nil
}

func (r *UserRepository) Update(_ context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	u, ok := r.st.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if update.Empty() {
		return copyUser(u), nil
	}
	if update.Email != nil && r.emailTaken(*update.Email, id) {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = *update.PhoneNumber
	}
	u.UpdatedAt = r.st.now()
	return copyUser(u), nil
}

// Delete removes the user; enrollments cascade as in the SQL schema
func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	for key := range r.st.enrollments {
		if key.userID == id {
			delete(r.st.enrollments, key)
		}
	}
	delete(r.st.users, id)
	return nil
}

// AdminRepository is the in-memory admin account store
type AdminRepository struct{ st *state }

func (r *AdminRepository) Create(_ context.Context, admin *models.Admin) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, a := range r.st.admins {
		if a.Username == admin.Username {
			return apperrors.NewConflictError("admin username already exists")
		}
	}
	admin.ID = r.st.id("admins")
	admin.CreatedAt = r.st.now()
	c := *admin
	r.st.admins[admin.ID] = &c
	return nil
}

func (r *AdminRepository) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	a, ok := r.st.admins[id]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	c := *a
	return &c, nil
}

func (r *AdminRepository) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, a := range r.st.admins {
		if a.Username == username {
			c := *a
			return &c, nil
		}
	}
	return nil, apperrors.ErrAdminNotFound
}

func (r *AdminRepository) Count(_ context.Context) (int, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return len(r.st.admins), nil
}

// TokenRepository is the in-memory active token list
type TokenRepository struct{ st *state }

func (r *TokenRepository) Create(_ context.Context, token *models.AccessToken) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.tokens[token.Token]; ok {
		return apperrors.ErrTokenInvalid
	}
	token.ID = r.st.id("access_tokens")
	token.CreatedAt = r.st.now()
	c := *token
	r.st.tokens[token.Token] = &c
	return nil
}

func (r *TokenRepository) Get(_ context.Context, token string) (*models.AccessToken, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	t, ok := r.st.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	c := *t
	return &c, nil
}

func (r *TokenRepository) Revoke(_ context.Context, token string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	t, ok := r.st.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.Revoked = true
	return nil
}

func (r *TokenRepository) RevokeAllForSubject(_ context.Context, kind models.SubjectKind, subjectID int64) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	var n int64
	for _, t := range r.st.tokens {
		if t.SubjectKind == kind && t.SubjectID == subjectID && !t.Revoked {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}

func (r *TokenRepository) CleanupExpired(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	now := time.Now()
	var n int64
	for key, t := range r.st.tokens {
		if t.ExpiresAt.Before(now) || (t.Revoked && t.CreatedAt.Before(now.Add(-30*24*time.Hour))) {
			delete(r.st.tokens, key)
			n++
		}
	}
	return n, nil
}
