package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/pkg/validation"
)

// RegisterValidators installs the custom rules on gin's binding validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return validation.RegisterRules(v)
}

// BindJSON decodes and validates the request body. On failure it writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		abortValidation(c, err)
		return false
	}
	return true
}

// BindPatch decodes a partial update. Any key outside allowed rejects the whole request with
// a 400 before anything is decoded, so an invalid field set never reaches the store.
func BindPatch(c *gin.Context, obj interface{}, allowed []string) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abortValidation(c, err)
		return false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body must be a JSON object")))
		return false
	}

	permitted := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		permitted[f] = true
	}
	invalid := make([]string, 0)
	for key := range fields {
		if !permitted[key] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidUpdates, "Invalid updates").
			WithDetails(map[string]interface{}{"invalidFields": invalid, "allowedFields": allowed})
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return false
	}

	if err := json.NewDecoder(bytes.NewReader(body)).Decode(obj); err != nil {
		abortValidation(c, err)
		return false
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		abortValidation(c, err)
		return false
	}
	return true
}

func abortValidation(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body too large")))
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		errs := dto.NewValidationErrors()
		for _, fe := range verrs {
			errs.AddError(fe.Field(), formatValidationError(fe))
		}
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, errs.Errors[0].Message).
			WithField(errs.Errors[0].Field).
			WithDetails(errs.Errors)
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "gtefield":
		return e.Field() + " must not be before " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case validation.ScriptAlphaTag:
		return e.Field() + " must contain only letters"
	case validation.PhoneTag:
		return e.Field() + " must be a valid phone number"
	default:
		return fmt.Sprintf("%s validation failed: %s", e.Field(), e.Tag())
	}
}
