package dto

import (
	"time"

	"github.com/linuxfest/backend/internal/app/models"
)

// UserUpdateFields is the whitelist of keys accepted by a user update
var UserUpdateFields = []string{"firstName", "lastName", "email", "phoneNumber"}

// CreateUserRequest represents the body of a participant creation
type CreateUserRequest struct {
	FirstName   string `json:"firstName" binding:"required,max=100"`
	LastName    string `json:"lastName" binding:"max=100"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,phone"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
}

// UpdateUserRequest represents the body of a participant update; absent fields are left unchanged
type UpdateUserRequest struct {
	FirstName   *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName" binding:"omitempty,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty"`
}

// ToUpdate converts the request to the model update
func (r UpdateUserRequest) ToUpdate() models.UserUpdate {
	return models.UserUpdate{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
}

// UserResponse is the JSON shape of a participant. The password hash is never exposed.
type UserResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserWithWorkshopsResponse pairs a participant with the workshops they are enrolled in
type UserWithWorkshopsResponse struct {
	User      UserResponse       `json:"user"`
	Workshops []WorkshopResponse `json:"workshops"`
}

// NewUserResponse converts a user model
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}

// NewUserResponses converts a list of users
func NewUserResponses(users []*models.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, NewUserResponse(u))
	}
	return result
}
