package dto

import (
	"fmt"
	"strings"
	"time"
)

// APIResponse is the standard success envelope
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewSuccessResponse wraps data in the success envelope
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// Links builds the public retrieval URLs of pictures. JSON never carries storage paths.
type Links struct {
	BasePath string
}

// NewLinks creates a Links rooted at basePath (e.g. "/api/v1")
func NewLinks(basePath string) Links {
	return Links{BasePath: strings.TrimRight(basePath, "/")}
}

// TeacherPicture returns the URL of a teacher's picture
func (l Links) TeacherPicture(teacherID int64) string {
	return fmt.Sprintf("%s/teachers/pic/%d", l.BasePath, teacherID)
}

// WorkshopPicture returns the URL of a workshop's main picture
func (l Links) WorkshopPicture(workshopID int64) string {
	return fmt.Sprintf("%s/workshops/pic/%d", l.BasePath, workshopID)
}

// AlbumPicture returns the URL of one album picture of a workshop
func (l Links) AlbumPicture(workshopID int64, pictureID string) string {
	return fmt.Sprintf("%s/workshops/pic/%d/%s", l.BasePath, workshopID, pictureID)
}
