package dto

import (
	"time"

	"github.com/linuxfest/backend/internal/app/models"
)

// WorkshopUpdateFields is the whitelist of keys accepted by a workshop update
var WorkshopUpdateFields = []string{"capacity", "title", "isRegOpen", "description", "teachers", "price", "times"}

// TimeRangeRequest is one scheduled session in a request body
type TimeRangeRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required,gtefield=Start"`
}

// TeacherRefRequest references a teacher by id
type TeacherRefRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}

// CreateWorkshopRequest represents the body of a workshop creation. Unknown keys are ignored.
type CreateWorkshopRequest struct {
	Title       string              `json:"title" binding:"required,max=200"`
	Description string              `json:"description" binding:"max=10000"`
	Capacity    int                 `json:"capacity" binding:"min=0"`
	Price       int64               `json:"price" binding:"min=0"`
	IsRegOpen   bool                `json:"isRegOpen"`
	Times       []TimeRangeRequest  `json:"times" binding:"omitempty,dive"`
	Teachers    []TeacherRefRequest `json:"teachers" binding:"omitempty,dive"`
}

// UpdateWorkshopRequest represents the body of a workshop update; absent fields are left unchanged
type UpdateWorkshopRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string              `json:"description" binding:"omitempty,max=10000"`
	Capacity    *int                 `json:"capacity" binding:"omitempty,min=0"`
	Price       *int64               `json:"price" binding:"omitempty,min=0"`
	IsRegOpen   *bool                `json:"isRegOpen"`
	Times       *[]TimeRangeRequest  `json:"times" binding:"omitempty,dive"`
	Teachers    *[]TeacherRefRequest `json:"teachers" binding:"omitempty,dive"`
}

func toTimeRanges(times []TimeRangeRequest) []models.TimeRange {
	result := make([]models.TimeRange, 0, len(times))
	for _, t := range times {
		result = append(result, models.TimeRange{Start: t.Start, End: t.End})
	}
	return result
}

func toTeacherIDs(refs []TeacherRefRequest) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

// TimeRanges converts the requested sessions
func (r CreateWorkshopRequest) TimeRanges() []models.TimeRange {
	return toTimeRanges(r.Times)
}

// TeacherIDs returns the referenced teacher ids in request order
func (r CreateWorkshopRequest) TeacherIDs() []int64 {
	return toTeacherIDs(r.Teachers)
}

// TimeRanges converts the requested sessions, or nil when absent
func (r UpdateWorkshopRequest) TimeRanges() *[]models.TimeRange {
	if r.Times == nil {
		return nil
	}
	times := toTimeRanges(*r.Times)
	return &times
}

// TeacherIDs returns the referenced teacher ids, or nil when absent
func (r UpdateWorkshopRequest) TeacherIDs() *[]int64 {
	if r.Teachers == nil {
		return nil
	}
	ids := toTeacherIDs(*r.Teachers)
	return &ids
}

// AlbumPictureResponse is one album entry with its retrieval URL
type AlbumPictureResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WorkshopResponse is the public JSON shape of a workshop
type WorkshopResponse struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Capacity    int                    `json:"capacity"`
	Price       int64                  `json:"price"`
	IsRegOpen   bool                   `json:"isRegOpen"`
	Times       []models.TimeRange     `json:"times"`
	Teachers    []models.TeacherRef    `json:"teachers"`
	PicURL      string                 `json:"picUrl,omitempty"`
	Album       []AlbumPictureResponse `json:"album"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// WorkshopWithTeachersResponse is the public detail view of a workshop
type WorkshopWithTeachersResponse struct {
	Workshop WorkshopResponse  `json:"workshop"`
	Teachers []TeacherResponse `json:"teachers"`
}

// ManagedWorkshopResponse is the admin list item of a workshop
type ManagedWorkshopResponse struct {
	Workshop          WorkshopResponse `json:"workshop"`
	Participants      []UserResponse   `json:"participants"`
	ParticipantsCount int              `json:"participantsCount"`
}

// ManagedWorkshopDetailResponse is the admin detail view of a workshop
type ManagedWorkshopDetailResponse struct {
	Workshop          WorkshopResponse  `json:"workshop"`
	Participants      []UserResponse    `json:"participants"`
	Teachers          []TeacherResponse `json:"teachers"`
	ParticipantsCount int               `json:"participantsCount"`
}

// EnrollmentResponse reports the outcome of an enrollment
type EnrollmentResponse struct {
	WorkshopID int64 `json:"workshopId"`
	UserID     int64 `json:"userId"`
	Created    bool  `json:"created"`
}

// NewWorkshopResponse converts a workshop model
func NewWorkshopResponse(w *models.Workshop, links Links) WorkshopResponse {
	resp := WorkshopResponse{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Capacity:    w.Capacity,
		Price:       w.Price,
		IsRegOpen:   w.IsRegOpen,
		Times:       w.Times,
		Teachers:    w.Teachers,
		Album:       make([]AlbumPictureResponse, 0, len(w.Album)),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if resp.Times == nil {
		resp.Times = []models.TimeRange{}
	}
	if resp.Teachers == nil {
		resp.Teachers = []models.TeacherRef{}
	}
	if w.HasPicture {
		resp.PicURL = links.WorkshopPicture(w.ID)
	}
	for _, pic := range w.Album {
		resp.Album = append(resp.Album, AlbumPictureResponse{
			ID:  pic.ID,
			URL: links.AlbumPicture(w.ID, pic.ID),
		})
	}
	return resp
}

// NewWorkshopResponses converts a list of workshops
func NewWorkshopResponses(workshops []*models.Workshop, links Links) []WorkshopResponse {
	result := make([]WorkshopResponse, 0, len(workshops))
	for _, w := range workshops {
		result = append(result, NewWorkshopResponse(w, links))
	}
	return result
}
