package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/repositories"
	"github.com/fitsync/routine-service/internal/services"
	"github.com/fitsync/routine-service/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	instructorHandler *InstructorHandler
	studentHandler    *StudentHandler
	authMiddleware    *JWTAuthMiddleware
	repoManager       repositories.RepositoryManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	repoManager repositories.RepositoryManager,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		instructorHandler: NewInstructorHandler(serviceManager.Instructor(), serviceManager.Export(), logger),
		studentHandler:    NewStudentHandler(serviceManager.Student(), logger),
		authMiddleware:    NewJWTAuthMiddleware(serviceManager.Auth()),
		repoManager:       repoManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// Public routes: account creation, login, and the code check the signup form
	// uses before an account exists.
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", hm.authHandler.Signup)
		auth.POST("/login", hm.authHandler.Login)
	}
	v1.POST("/instructor/code/check", hm.instructorHandler.CheckCode)

	// Instructor routes
	instructor := v1.Group("/instructor")
	instructor.Use(hm.authMiddleware.AuthMiddleware())
	instructor.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor))
	{
		instructor.GET("/code", hm.instructorHandler.GetCode)
		instructor.POST("/code/regenerate", hm.instructorHandler.RegenerateCode)

		instructor.POST("/routines", hm.instructorHandler.CreateRoutine)
		instructor.GET("/routines", hm.instructorHandler.ListRoutines)
		instructor.GET("/routines/:id", hm.instructorHandler.GetRoutine)
		instructor.PATCH("/routines/:id", hm.instructorHandler.UpdateRoutine)

		instructor.GET("/students", hm.instructorHandler.ListStudents)
		instructor.GET("/students/:id", hm.instructorHandler.GetStudent)
		instructor.PATCH("/students/:id/routines", hm.instructorHandler.UpdateStudentRoutines)

		instructor.GET("/export", hm.instructorHandler.ExportWorkbook)
	}

	// Student routes
	students := v1.Group("/students")
	students.Use(hm.authMiddleware.AuthMiddleware())
	students.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
	{
		students.GET("/me", hm.studentHandler.GetProfile)
		students.GET("/routines", hm.studentHandler.ListRoutines)
		students.GET("/routines/:id", hm.studentHandler.GetRoutine)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status := http.StatusOK
	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "routine-service",
	}

	if hm.repoManager != nil {
		if err := hm.repoManager.HealthCheck(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "unhealthy"
			health["error"] = err.Error()
		}
	}

	c.JSON(status, health)
}
