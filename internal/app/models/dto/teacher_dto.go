package dto

import (
	"time"

	"github.com/linuxfest/backend/internal/app/models"
)

// TeacherUpdateFields is the whitelist of keys accepted by a teacher update
var TeacherUpdateFields = []string{"fullName", "description"}

// CreateTeacherRequest represents the body of a teacher creation
type CreateTeacherRequest struct {
	FullName    string `json:"fullName" binding:"required,min=2,max=100,scriptalpha"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateTeacherRequest represents the body of a teacher update; absent fields are left unchanged
type UpdateTeacherRequest struct {
	FullName    *string `json:"fullName" binding:"omitempty,min=2,max=100,scriptalpha"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

// ToUpdate converts the request to the model update
func (r UpdateTeacherRequest) ToUpdate() models.TeacherUpdate {
	return models.TeacherUpdate{FullName: r.FullName, Description: r.Description}
}

// TeacherResponse is the public JSON shape of a teacher
type TeacherResponse struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description"`
	PicURL      string    `json:"picUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeacherWithWorkshopsResponse pairs a teacher with the workshops referencing it
type TeacherWithWorkshopsResponse struct {
	Teacher   TeacherResponse    `json:"teacher"`
	Workshops []WorkshopResponse `json:"workshops"`
}

// NewTeacherResponse converts a teacher model
func NewTeacherResponse(t *models.Teacher, links Links) TeacherResponse {
	resp := TeacherResponse{
		ID:          t.ID,
		FullName:    t.FullName,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.HasPicture {
		resp.PicURL = links.TeacherPicture(t.ID)
	}
	return resp
}

// NewTeacherResponses converts a list of teachers
func NewTeacherResponses(teachers []*models.Teacher, links Links) []TeacherResponse {
	result := make([]TeacherResponse, 0, len(teachers))
	for _, t := range teachers {
		result = append(result, NewTeacherResponse(t, links))
	}
	return result
}

// NewTeacherWithWorkshopsResponse converts a teacher and its workshops
func NewTeacherWithWorkshopsResponse(t *models.Teacher, workshops []*models.Workshop, links Links) TeacherWithWorkshopsResponse {
	return TeacherWithWorkshopsResponse{
		Teacher:   NewTeacherResponse(t, links),
		Workshops: NewWorkshopResponses(workshops, links),
	}
}
