package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pathforge/pathforge_backend/controllers"
	"github.com/pathforge/pathforge_backend/middleware"
)

// RegisterCommunityRoutes sets up the member directory routes
func RegisterCommunityRoutes(e *echo.Echo, db *mongo.Client) {
	communityController := controllers.NewCommunityController(db)

	// Listing and profiles are public; writes require a session
	e.GET("/api/community", communityController.GetMembers)
	e.GET("/api/community/:id", communityController.GetMemberByID)
	e.POST("/api/community", communityController.AddMember, middleware.JWTMiddleware())
	e.PUT("/api/community/:id", communityController.UpdateMember, middleware.JWTMiddleware())
	e.DELETE("/api/community/:id", communityController.DeleteMember, middleware.JWTMiddleware())
}
