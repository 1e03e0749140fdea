// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"JobBridge-backend/internal/admission"
	"JobBridge-backend/internal/auth"
	"JobBridge-backend/internal/controller/application"
	"JobBridge-backend/internal/controller/file"
	"JobBridge-backend/internal/controller/jobpost"
	"JobBridge-backend/internal/controller/notification"
	"JobBridge-backend/internal/controller/stream"
	"JobBridge-backend/internal/middleware"
	"JobBridge-backend/internal/model"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	// Init swagger doc
	_ "JobBridge-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *JobBridgeServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOriginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrigins := strings.Split(allowOriginsStr, ",")

	engine := admission.NewEngine(s.DB, s.Bus)

	lAuth := auth.NewLocalAuthHandler(s.DB)
	applicationCtl := application.NewApplicationController(s.DB, engine)
	jobPostCtl := jobpost.NewJobPostController(s.DB, s.Bus)
	fileCtl := file.NewFileController(s.DB, s.Storage)
	notificationCtl := notification.NewNotificationController(s.Dispatcher)
	streamCtl := stream.NewStreamController(s.DB, s.Hub)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.SafeHeader())

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("register", lAuth.LocalRegisterHandler)
		}

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB), middleware.EnvRateLimitMiddleware())

			applicationRoute := needAuth.Group("/application")
			{
				applicationRoute.POST("", middleware.CheckRole(model.RoleApplicant), applicationCtl.SubmitHandler)
				applicationRoute.GET("", middleware.CheckRole(model.RoleApplicant), applicationCtl.ListMineHandler)
				applicationRoute.PATCH(":id/status", middleware.CheckRole(model.RoleCompany, model.RoleAdmin), applicationCtl.TransitionHandler)
				applicationRoute.POST(":id/withdraw", middleware.CheckRole(model.RoleApplicant), applicationCtl.WithdrawHandler)
			}

			jobPostRoute := needAuth.Group("/jobpost")
			{
				jobPostRoute.GET("", jobPostCtl.GetAllHandler)
				jobPostRoute.GET(":id", jobPostCtl.GetHandler)
				jobPostRoute.POST("", middleware.CheckRole(model.RoleCompany), jobPostCtl.CreateHandler)
				jobPostRoute.PATCH(":id", middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jobPostCtl.EditHandler)
				jobPostRoute.DELETE(":id", middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jobPostCtl.DeleteHandler)
				jobPostRoute.POST(":id/close", middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jobPostCtl.CloseHandler)
				jobPostRoute.GET(":id/applications", middleware.CheckRole(model.RoleCompany, model.RoleAdmin), jobPostCtl.GetApplicationsHandler)
			}

			fileRoute := needAuth.Group("/file")
			{
				fileRoute.POST("", middleware.SizeLimit(10<<20), fileCtl.UploadHandler)
				fileRoute.GET(":id", fileCtl.GetHandler)
				fileRoute.DELETE(":id", fileCtl.DeleteHandler)
			}

			notificationRoute := needAuth.Group("/notification")
			{
				notificationRoute.GET("", notificationCtl.ListHandler)
				notificationRoute.PATCH(":id/read", notificationCtl.MarkReadHandler)
				notificationRoute.POST("read-all", notificationCtl.ReadAllHandler)
			}

			streamRoute := needAuth.Group("/stream")
			{
				streamRoute.GET("applications", middleware.CheckRole(model.RoleApplicant), streamCtl.ApplicationsHandler)
				streamRoute.GET("jobposts", middleware.CheckRole(model.RoleCompany), streamCtl.JobPostsHandler)
				streamRoute.GET("jobpost/:id/applications", middleware.CheckRole(model.RoleCompany, model.RoleAdmin), streamCtl.PostApplicationsHandler)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func (s *JobBridgeServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
