package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/app/services"
	"github.com/linuxfest/backend/internal/middleware"
)

// WorkshopController handles workshop and enrollment operations
type WorkshopController struct {
	workshopService services.WorkshopService
	links           dto.Links
}

// NewWorkshopController creates a new WorkshopController
func NewWorkshopController(workshopService services.WorkshopService, links dto.Links) *WorkshopController {
	return &WorkshopController{
		workshopService: workshopService,
		links:           links,
	}
}

func (c *WorkshopController) teacherResponses(teachers []*models.Teacher) []dto.TeacherResponse {
	return dto.NewTeacherResponses(teachers, c.links)
}

// CreateWorkshop handles workshop creation
func (c *WorkshopController) CreateWorkshop(ctx *gin.Context) {
	var req dto.CreateWorkshopRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	workshop, err := c.workshopService.CreateWorkshop(ctx, services.WorkshopInput{
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
		Price:       req.Price,
		IsRegOpen:   req.IsRegOpen,
		Times:       req.TimeRanges(),
		TeacherIDs:  req.TeacherIDs(),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewWorkshopResponse(workshop, c.links))
}

// ListWorkshops returns the public list of workshops
func (c *WorkshopController) ListWorkshops(ctx *gin.Context) {
	workshops, err := c.workshopService.ListWorkshops(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewWorkshopResponses(workshops, c.links))
}

// GetWorkshop returns the public view of a workshop with its current teacher records
func (c *WorkshopController) GetWorkshop(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	details, err := c.workshopService.GetWorkshop(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, dto.WorkshopWithTeachersResponse{
		Workshop: dto.NewWorkshopResponse(details.Workshop, c.links),
		Teachers: c.teacherResponses(details.Teachers),
	})
}

// ListManagedWorkshops returns every workshop with its participants
func (c *WorkshopController) ListManagedWorkshops(ctx *gin.Context) {
	workshops, err := c.workshopService.ListManagedWorkshops(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result := make([]dto.ManagedWorkshopResponse, 0, len(workshops))
	for _, w := range workshops {
		result = append(result, dto.ManagedWorkshopResponse{
			Workshop:          dto.NewWorkshopResponse(w.Workshop, c.links),
			Participants:      dto.NewUserResponses(w.Participants),
			ParticipantsCount: w.ParticipantsCount,
		})
	}
	respondOK(ctx, result)
}

// GetManagedWorkshop returns a workshop with its participants and teacher records
func (c *WorkshopController) GetManagedWorkshop(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	details, err := c.workshopService.GetManagedWorkshop(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, dto.ManagedWorkshopDetailResponse{
		Workshop:          dto.NewWorkshopResponse(details.Workshop, c.links),
		Participants:      dto.NewUserResponses(details.Participants),
		Teachers:          c.teacherResponses(details.Teachers),
		ParticipantsCount: details.ParticipantsCount,
	})
}

// UpdateWorkshop applies a partial update to a workshop
func (c *WorkshopController) UpdateWorkshop(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateWorkshopRequest
	if !middleware.BindPatch(ctx, &req, dto.WorkshopUpdateFields) {
		return
	}

	workshop, err := c.workshopService.UpdateWorkshop(ctx, id, services.WorkshopPatch{
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
		Price:       req.Price,
		IsRegOpen:   req.IsRegOpen,
		Times:       req.TimeRanges(),
		TeacherIDs:  req.TeacherIDs(),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, dto.NewWorkshopResponse(workshop, c.links))
}

// DeleteWorkshop deletes a workshop, its enrollments and its pictures
func (c *WorkshopController) DeleteWorkshop(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.workshopService.DeleteWorkshop(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *WorkshopController) enroll(ctx *gin.Context, workshopID, userID int64) {
	created, err := c.workshopService.Enroll(ctx, workshopID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, dto.EnrollmentResponse{
		WorkshopID: workshopID,
		UserID:     userID,
		Created:    created,
	})
}

func (c *WorkshopController) unenroll(ctx *gin.Context, workshopID, userID int64) {
	if err := c.workshopService.Unenroll(ctx, workshopID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddParticipant enrolls a user in a workshop on behalf of an admin
func (c *WorkshopController) AddParticipant(ctx *gin.Context) {
	workshopID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}
	c.enroll(ctx, workshopID, userID)
}

// RemoveParticipant removes a user's enrollment on behalf of an admin
func (c *WorkshopController) RemoveParticipant(ctx *gin.Context) {
	workshopID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}
	c.unenroll(ctx, workshopID, userID)
}

// EnrollSelf enrolls the authenticated participant
func (c *WorkshopController) EnrollSelf(ctx *gin.Context) {
	workshopID, ok := parseIDParam(ctx, "workshopId")
	if !ok {
		return
	}
	c.enroll(ctx, workshopID, middleware.CurrentUser(ctx).ID)
}

// UnenrollSelf removes the authenticated participant's enrollment
func (c *WorkshopController) UnenrollSelf(ctx *gin.Context) {
	workshopID, ok := parseIDParam(ctx, "workshopId")
	if !ok {
		return
	}
	c.unenroll(ctx, workshopID, middleware.CurrentUser(ctx).ID)
}
