package models

import "time"

// TimeRange is one scheduled session of a workshop
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TeacherRef links a workshop to a teacher. Name is a snapshot taken when the
// reference was written and is not updated on later renames.
type TeacherRef struct {
	TeacherID int64  `json:"id" db:"teacher_id"`
	Name      string `json:"name" db:"teacher_name"`
}

// AlbumPicture is one album entry of a workshop
type AlbumPicture struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Workshop defines a scheduled offering based on the 'workshops' table
type Workshop struct {
	ID          int64          `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Capacity    int            `json:"capacity" db:"capacity"`
	Price       int64          `json:"price" db:"price"`
	IsRegOpen   bool           `json:"isRegOpen" db:"is_reg_open"`
	Times       []TimeRange    `json:"times" db:"times"`
	HasPicture  bool           `json:"-" db:"has_picture"`
	Teachers    []TeacherRef   `json:"teachers"`
	Album       []AlbumPicture `json:"album"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// HasTeacher reports whether the workshop references the teacher
func (w *Workshop) HasTeacher(teacherID int64) bool {
	for _, ref := range w.Teachers {
		if ref.TeacherID == teacherID {
			return true
		}
	}
	return false
}

// WorkshopUpdate carries the whitelisted fields of a workshop update; nil fields are left unchanged.
// Teachers replaces the whole reference list when set.
type WorkshopUpdate struct {
	Title       *string
	Description *string
	Capacity    *int
	Price       *int64
	IsRegOpen   *bool
	Times       *[]TimeRange
	Teachers    *[]TeacherRef
}

// Empty reports whether the update changes nothing
func (u WorkshopUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Capacity == nil && u.Price == nil &&
		u.IsRegOpen == nil && u.Times == nil && u.Teachers == nil
}

// Enrollment links a participant to a workshop
type Enrollment struct {
	WorkshopID int64     `json:"workshopId" db:"workshop_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
