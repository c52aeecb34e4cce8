package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   dto.ErrorCode
	// message is used when the error carries no client-facing message of its own
	message string
}

// Order matters: specific errors come before the generic families they may wrap.
var errorMappings = []errorMapping{
	// 401: generic messages only
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Authentication required"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Authentication required"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Authentication required"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Authentication required"},
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},

	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	{apperrors.ErrTeacherNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
	{apperrors.ErrWorkshopNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
	{apperrors.ErrAdminNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
	{apperrors.ErrPictureNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
	{apperrors.ErrNotEnrolled, http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},

	{apperrors.ErrTeacherAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, ""},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, ""},
	{apperrors.ErrRegistrationClosed, http.StatusConflict, dto.ErrorCodeConflict, ""},
	{apperrors.ErrWorkshopFull, http.StatusConflict, dto.ErrorCodeConflict, ""},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, ""},

	{apperrors.ErrInvalidImageType, http.StatusBadRequest, dto.ErrorCodeInvalidImage, ""},
	{apperrors.ErrImageTooLarge, http.StatusBadRequest, dto.ErrorCodeInvalidImage, ""},
	{apperrors.ErrImageDecodingFailed, http.StatusBadRequest, dto.ErrorCodeInvalidImage, "image could not be decoded"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, ""},
}

// HandleAPIError maps err to a status code and the standard error envelope.
// Unknown errors are logged and answered with a generic 500; their message never reaches the client.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = apperrors.Message(err)
		}
		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(dto.NewErrorDetail(m.code, message)))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

// AbortBadRequest writes a 400 with the given message
func AbortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)))
}

// NotFoundHandler answers unknown routes with the standard envelope
func NotFoundHandler(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found")))
}
