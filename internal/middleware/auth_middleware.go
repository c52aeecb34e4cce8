package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/linuxfest/backend/internal/app/auth"
	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/app/services"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/auth"
	"github.com/linuxfest/backend/internal/pkg/logger"
)

// Context keys set by the authentication middleware
const (
	PrincipalKey = "principal"
	AdminKey     = "admin"
	UserKey      = "user"
)

// Authenticator verifies a bearer token against the active token list
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
}

// authenticate resolves the principal of the request, or aborts with a generic 401
func (m *AuthMiddleware) authenticate(c *gin.Context, kind models.SubjectKind) *services.Principal {
	token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		abortUnauthorized(c)
		return nil
	}

	principal, err := m.authenticator.Authenticate(c.Request.Context(), token)
	if err != nil {
		logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Authentication failed")
		abortUnauthorized(c)
		return nil
	}
	if principal.Kind != kind {
		abortUnauthorized(c)
		return nil
	}

	c.Set(PrincipalKey, principal)
	return principal
}

// AdminAuth requires an admin token and loads the admin into the context
func (m *AuthMiddleware) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := m.authenticate(c, models.SubjectAdmin)
		if principal == nil {
			return
		}
		c.Set(AdminKey, principal.Admin)
		c.Next()
	}
}

// UserAuth requires a participant token and loads the user into the context
func (m *AuthMiddleware) UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := m.authenticate(c, models.SubjectUser)
		if principal == nil {
			return
		}
		c.Set(UserKey, principal.User)
		c.Next()
	}
}

// RequirePermission rejects the request with a 403 unless the admin's role grants action.
// It runs before the handler, so a denied request never touches the store.
func RequirePermission(action appauth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := CurrentAdmin(c)
		if !appauth.CheckPermission(admin, action) {
			logger.Info().
				Str("action", action.String()).
				Str("path", c.Request.URL.Path).
				Msg("Permission denied")
			HandleAPIError(c, fmt.Errorf("%w: %s", apperrors.ErrPermissionDenied, action))
			return
		}
		c.Next()
	}
}

// CurrentAdmin returns the authenticated admin, or nil
func CurrentAdmin(c *gin.Context) *models.Admin {
	value, ok := c.Get(AdminKey)
	if !ok {
		return nil
	}
	admin, _ := value.(*models.Admin)
	return admin
}

// CurrentUser returns the authenticated participant, or nil
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
