package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/app/services"
	"github.com/linuxfest/backend/internal/middleware"
)

// UserController handles participant operations
type UserController struct {
	userService services.UserService
	links       dto.Links
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, links dto.Links) *UserController {
	return &UserController{
		userService: userService,
		links:       links,
	}
}

func (c *UserController) detailsResponse(details *services.UserDetails) dto.UserWithWorkshopsResponse {
	return dto.UserWithWorkshopsResponse{
		User:      dto.NewUserResponse(details.User),
		Workshops: dto.NewWorkshopResponses(details.Workshops, c.links),
	}
}

// CreateUser handles participant creation
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.CreateUser(ctx, services.UserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewUserResponse(user))
}

// ListUsers returns every participant
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.userService.ListUsers(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewUserResponses(users))
}

// GetUser returns a participant with their workshops
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	details, err := c.userService.GetUser(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, c.detailsResponse(details))
}

// UpdateUser applies a partial update to a participant
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !middleware.BindPatch(ctx, &req, dto.UserUpdateFields) {
		return
	}

	user, err := c.userService.UpdateUser(ctx, id, req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewUserResponse(user))
}

// DeleteUser deletes a participant with their enrollments and tokens
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.DeleteUser(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetProfile returns the authenticated participant with their workshops
func (c *UserController) GetProfile(ctx *gin.Context) {
	details, err := c.userService.GetUser(ctx, middleware.CurrentUser(ctx).ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, c.detailsResponse(details))
}
