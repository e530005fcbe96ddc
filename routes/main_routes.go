package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pathforge/pathforge_backend/controllers"
	"github.com/pathforge/pathforge_backend/services"
)

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, db *mongo.Client, authController *controllers.AuthController) {
	agent := services.NewAgentService()

	RegisterAuthRoutes(e, authController)
	RegisterCommunityRoutes(e, db)
	RegisterAssessmentRoutes(e, db, agent)
	RegisterChatRoutes(e, db)
	RegisterRoadmapRoutes(e, db)
}
