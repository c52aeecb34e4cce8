package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/app/services"
	"github.com/linuxfest/backend/internal/middleware"
)

// TeacherController handles teacher-related operations
type TeacherController struct {
	teacherService services.TeacherService
	links          dto.Links
}

// NewTeacherController creates a new TeacherController
func NewTeacherController(teacherService services.TeacherService, links dto.Links) *TeacherController {
	return &TeacherController{
		teacherService: teacherService,
		links:          links,
	}
}

// CreateTeacher handles teacher creation
func (c *TeacherController) CreateTeacher(ctx *gin.Context) {
	var req dto.CreateTeacherRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	teacher, err := c.teacherService.CreateTeacher(ctx, req.FullName, req.Description)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewTeacherResponse(teacher, c.links))
}

// ListTeachers returns every teacher together with the workshops referencing it
func (c *TeacherController) ListTeachers(ctx *gin.Context) {
	teachers, err := c.teacherService.ListTeachers(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result := make([]dto.TeacherWithWorkshopsResponse, 0, len(teachers))
	for _, t := range teachers {
		result = append(result, dto.NewTeacherWithWorkshopsResponse(t.Teacher, t.Workshops, c.links))
	}
	respondOK(ctx, result)
}

// GetTeacher retrieves a teacher by ID
func (c *TeacherController) GetTeacher(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	details, err := c.teacherService.GetTeacher(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, dto.NewTeacherWithWorkshopsResponse(details.Teacher, details.Workshops, c.links))
}

// UpdateTeacher applies a partial update to a teacher
func (c *TeacherController) UpdateTeacher(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTeacherRequest
	if !middleware.BindPatch(ctx, &req, dto.TeacherUpdateFields) {
		return
	}

	teacher, err := c.teacherService.UpdateTeacher(ctx, id, req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, dto.NewTeacherResponse(teacher, c.links))
}

// DeleteTeacher deletes a teacher and its picture
func (c *TeacherController) DeleteTeacher(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.teacherService.DeleteTeacher(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
