package routes

import (
	"github.com/gin-gonic/gin"
	appauth "github.com/linuxfest/backend/internal/app/auth"
	"github.com/linuxfest/backend/internal/app/controllers"
	"github.com/linuxfest/backend/internal/middleware"
	"github.com/linuxfest/backend/internal/pkg/metrics"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Teacher  *controllers.TeacherController
	Workshop *controllers.WorkshopController
	Picture  *controllers.PictureController
	User     *controllers.UserController
	Health   *controllers.HealthController
}

// SetupRouter configures all application routes under basePath
func SetupRouter(
	router *gin.Engine,
	basePath string,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.NoRoute(middleware.NotFoundHandler)

	// --- Ops routes ---
	router.GET("/health", c.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group(basePath)
	allow := middleware.RequirePermission

	// --- Public routes ---
	v1.GET("/workshops", c.Workshop.ListWorkshops)
	v1.GET("/workshops/:id", c.Workshop.GetWorkshop)
	v1.GET("/workshops/pic/:id", c.Picture.GetWorkshopPicture)
	v1.GET("/workshops/pic/:id/:picid", c.Picture.GetAlbumPicture)
	v1.GET("/teachers/pic/:id", c.Picture.GetTeacherPicture)

	// --- Admin routes ---
	admin := v1.Group("")
	admin.Use(authMiddleware.AdminAuth())

	teachers := admin.Group("/teachers")
	{
		teachers.POST("", allow(appauth.AddTeacher), c.Teacher.CreateTeacher)
		teachers.GET("", allow(appauth.GetTeacher), c.Teacher.ListTeachers)
		teachers.GET("/manage/:id", allow(appauth.GetTeacher), c.Teacher.GetTeacher)
		teachers.PATCH("/manage/:id", allow(appauth.EditTeacher), c.Teacher.UpdateTeacher)
		teachers.DELETE("/manage/:id", allow(appauth.DeleteTeacher), c.Teacher.DeleteTeacher)

		teachers.POST("/pic/:id", allow(appauth.EditTeacher), c.Picture.UploadTeacherPicture)
		teachers.DELETE("/pic/:id", allow(appauth.EditTeacher), c.Picture.DeleteTeacherPicture)
	}

	workshops := admin.Group("/workshops")
	{
		workshops.POST("", allow(appauth.AddWorkshop), c.Workshop.CreateWorkshop)
		workshops.GET("/manage", allow(appauth.GetWorkshop), c.Workshop.ListManagedWorkshops)
		workshops.GET("/manage/:id", allow(appauth.GetWorkshop), c.Workshop.GetManagedWorkshop)
		workshops.PATCH("/manage/:id", allow(appauth.EditWorkshop), c.Workshop.UpdateWorkshop)
		workshops.DELETE("/manage/:id", allow(appauth.DeleteWorkshop), c.Workshop.DeleteWorkshop)

		// Enrollment on behalf of a participant
		workshops.PUT("/manage/:id/user/:userId", allow(appauth.EditWorkshop), c.Workshop.AddParticipant)
		workshops.DELETE("/manage/:id/user/:userId", allow(appauth.EditWorkshop), c.Workshop.RemoveParticipant)

		workshops.POST("/pic/:id", allow(appauth.EditWorkshop), c.Picture.UploadWorkshopPicture)
		workshops.DELETE("/pic/:id", allow(appauth.EditWorkshop), c.Picture.DeleteWorkshopPicture)
		workshops.POST("/pic/album/:id", allow(appauth.EditWorkshop), c.Picture.UploadAlbumPictures)
		workshops.DELETE("/pic/album/:id/:picid", allow(appauth.EditWorkshop), c.Picture.DeleteAlbumPicture)
	}

	users := admin.Group("/users")
	{
		users.POST("", allow(appauth.AddUser), c.User.CreateUser)
		users.GET("", allow(appauth.GetUser), c.User.ListUsers)
		users.GET("/manage/:id", allow(appauth.GetUser), c.User.GetUser)
		users.PATCH("/manage/:id", allow(appauth.EditUser), c.User.UpdateUser)
		users.DELETE("/manage/:id", allow(appauth.DeleteUser), c.User.DeleteUser)
	}

	// --- Participant routes ---
	me := v1.Group("/users/me")
	me.Use(authMiddleware.UserAuth())
	{
		me.GET("", c.User.GetProfile)
		me.PUT("/workshops/:workshopId", c.Workshop.EnrollSelf)
		me.DELETE("/workshops/:workshopId", c.Workshop.UnenrollSelf)
	}
}
