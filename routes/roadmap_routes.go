package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pathforge/pathforge_backend/controllers"
	"github.com/pathforge/pathforge_backend/middleware"
)

// RegisterRoadmapRoutes sets up the roadmap and progress tracker routes
func RegisterRoadmapRoutes(e *echo.Echo, db *mongo.Client) {
	roadmapController := controllers.NewRoadmapController(db)

	e.GET("/api/progress/roadmap/:userId", roadmapController.GetRoadmap, middleware.JWTMiddleware())
	e.POST("/api/progress/roadmap", roadmapController.CreateRoadmap, middleware.JWTMiddleware())
	e.POST("/api/progress", roadmapController.CompleteStep, middleware.JWTMiddleware())
}
