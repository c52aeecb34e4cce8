package models

import "time"

// Teacher defines a workshop instructor based on the 'teachers' table
type Teacher struct {
	ID          int64     `json:"id" db:"id"`
	FullName    string    `json:"fullName" db:"full_name"`
	Description string    `json:"description" db:"description"`
	HasPicture  bool      `json:"-" db:"has_picture"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// TeacherUpdate carries the whitelisted fields of a teacher update; nil fields are left unchanged
type TeacherUpdate struct {
	FullName    *string
	Description *string
}

// Empty reports whether the update changes nothing
func (u TeacherUpdate) Empty() bool {
	return u.FullName == nil && u.Description == nil
}
