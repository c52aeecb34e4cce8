package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/app/services"
	"github.com/linuxfest/backend/internal/middleware"
	"github.com/linuxfest/backend/internal/pkg/filestorage"
)

// Multipart form fields carrying uploads
const (
	MainPictureField  = "mainPic"
	AlbumPictureField = "pictures"
)

// PictureController serves and manages workshop and teacher pictures
type PictureController struct {
	pictureService services.PictureService
	links          dto.Links
}

// NewPictureController creates a new PictureController
func NewPictureController(pictureService services.PictureService, links dto.Links) *PictureController {
	return &PictureController{
		pictureService: pictureService,
		links:          links,
	}
}

func serveFile(ctx *gin.Context, name string, file *filestorage.File) {
	defer file.Close()
	ctx.Header("Content-Type", "image/png")
	ctx.Header("Cache-Control", "public, max-age=300")
	http.ServeContent(ctx.Writer, ctx.Request, name, file.ModTime, file)
}

// abortForm writes a 413 for oversized bodies and a 400 otherwise
func abortForm(ctx *gin.Context, err error, message string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		ctx.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body too large")))
		return
	}
	middleware.AbortBadRequest(ctx, message)
}

// singleUpload reads the one file of the given form field, writing an error when absent
func singleUpload(ctx *gin.Context, field string) (*multipart.FileHeader, bool) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		abortForm(ctx, err, field+" file is required")
		return nil, false
	}
	return fh, true
}

// GetWorkshopPicture serves a workshop's main picture
func (c *PictureController) GetWorkshopPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := c.pictureService.OpenWorkshopPicture(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	serveFile(ctx, "main.png", file)
}

// GetAlbumPicture serves one album picture of a workshop
func (c *PictureController) GetAlbumPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	pictureID := ctx.Param("picid")

	file, err := c.pictureService.OpenAlbumPicture(ctx, id, pictureID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	serveFile(ctx, pictureID+".png", file)
}

// GetTeacherPicture serves a teacher's picture
func (c *PictureController) GetTeacherPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := c.pictureService.OpenTeacherPicture(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	serveFile(ctx, "teacher-"+strconv.FormatInt(id, 10)+".png", file)
}

// UploadWorkshopPicture sets or replaces a workshop's main picture
func (c *PictureController) UploadWorkshopPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	fh, ok := singleUpload(ctx, MainPictureField)
	if !ok {
		return
	}

	workshop, err := c.pictureService.SetWorkshopPicture(ctx, id, fh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewWorkshopResponse(workshop, c.links))
}

// DeleteWorkshopPicture removes a workshop's main picture
func (c *PictureController) DeleteWorkshopPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	workshop, err := c.pictureService.DeleteWorkshopPicture(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewWorkshopResponse(workshop, c.links))
}

// UploadAlbumPictures appends pictures to a workshop's album. The batch is all or nothing.
func (c *PictureController) UploadAlbumPictures(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		abortForm(ctx, err, "Invalid multipart form")
		return
	}
	files := form.File[AlbumPictureField]
	if len(files) == 0 {
		middleware.AbortBadRequest(ctx, AlbumPictureField+" files are required")
		return
	}

	workshop, err := c.pictureService.AddAlbumPictures(ctx, id, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewWorkshopResponse(workshop, c.links))
}

// DeleteAlbumPicture removes one picture from a workshop's album
func (c *PictureController) DeleteAlbumPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	workshop, err := c.pictureService.DeleteAlbumPicture(ctx, id, ctx.Param("picid"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewWorkshopResponse(workshop, c.links))
}

// UploadTeacherPicture sets or replaces a teacher's picture
func (c *PictureController) UploadTeacherPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	fh, ok := singleUpload(ctx, MainPictureField)
	if !ok {
		return
	}

	teacher, err := c.pictureService.SetTeacherPicture(ctx, id, fh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewTeacherResponse(teacher, c.links))
}

// DeleteTeacherPicture removes a teacher's picture
func (c *PictureController) DeleteTeacherPicture(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	teacher, err := c.pictureService.DeleteTeacherPicture(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.NewTeacherResponse(teacher, c.links))
}
