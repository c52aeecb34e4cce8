package apperrors

import "errors"

// Common errors
var (
	ErrConflict = errors.New("conflict")

	// Authentication errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenNotFound   = errors.New("token not found")
	ErrTokenRevoked    = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Teacher errors
var (
	ErrTeacherNotFound      = errors.New("teacher not found")
	ErrTeacherAlreadyExists = errors.New("teacher with this full name already exists")
	ErrInvalidTeacherName   = errors.New("teacher name is not valid")
)

// Workshop errors
var (
	ErrWorkshopNotFound   = errors.New("workshop not found")
	ErrRegistrationClosed = errors.New("workshop registration is closed")
	ErrWorkshopFull       = errors.New("workshop capacity is full")
	ErrNotEnrolled        = errors.New("user is not enrolled in this workshop")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAdminNotFound      = errors.New("admin not found")
)

// Picture errors
var (
	ErrPictureNotFound     = errors.New("picture not found")
	ErrInvalidImageType    = errors.New("only jpg, jpeg and png images are accepted")
	ErrImageTooLarge       = errors.New("image exceeds the upload size limit")
	ErrImageDecodingFailed = errors.New("image could not be decoded")
)

// NewConflictError wraps ErrConflict with a client-facing message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a client-facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// CustomError pairs a sentinel with the message shown to clients
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Message returns the client-facing message carried by err, falling back to err.Error().
func Message(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return err.Error()
}
