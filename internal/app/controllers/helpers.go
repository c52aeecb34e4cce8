// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/middleware"
)

// parseIDParam reads a positive integer path parameter, writing a 400 when it is malformed
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.AbortBadRequest(ctx, "Invalid "+name+" format")
		return 0, false
	}
	return id, true
}

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewSuccessResponse(data))
}

func respondOK(ctx *gin.Context, data interface{}) {
	respond(ctx, http.StatusOK, data)
}
