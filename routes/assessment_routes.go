package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pathforge/pathforge_backend/controllers"
	"github.com/pathforge/pathforge_backend/middleware"
	"github.com/pathforge/pathforge_backend/services"
)

// RegisterAssessmentRoutes sets up the career-interest quiz routes
func RegisterAssessmentRoutes(e *echo.Echo, db *mongo.Client, agent *services.AgentService) {
	assessmentController := controllers.NewAssessmentController(db, agent)

	e.POST("/api/userinterest/submit", assessmentController.SubmitAssessment, middleware.JWTMiddleware())
	e.GET("/api/userinterest/status", assessmentController.GetAssessmentStatus, middleware.JWTMiddleware())
}
